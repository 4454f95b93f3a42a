// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !noprometheus
// +build !noprometheus

// Package instrument exports audit results as Prometheus metrics.
package instrument

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/op/go-logging.v1"

	"github.com/katzenpost/matryoshka/core/opcount"
)

var (
	batchOperations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matryoshka_batch_field_operations",
			Help: "Field operations of the last audited isogeny of a batch",
		},
		[]string{"set", "batch", "op"},
	)
	isogeniesAudited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matryoshka_audited_isogenies_total",
			Help: "Number of audited isogenies",
		},
		[]string{"set"},
	)
	countMismatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matryoshka_operation_count_mismatches_total",
			Help: "Number of batches whose degrees disagreed on operation counts",
		},
		[]string{"set"},
	)
	sampleAttempts = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name: "matryoshka_kernel_sample_attempts",
			Help: "Elligator draws needed per kernel point",
		},
	)
)

func init() {
	prometheus.MustRegister(batchOperations)
	prometheus.MustRegister(isogeniesAudited)
	prometheus.MustRegister(countMismatches)
	prometheus.MustRegister(sampleAttempts)
}

// StartPrometheusListener serves /metrics on address until the returned
// server is shut down.
func StartPrometheusListener(address string, log *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: address, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics listener failed: %v", err)
		}
	}()
	return srv
}

// BatchOperations records the counts of an audited isogeny of batch b.
func BatchOperations(set string, b int, c opcount.Counts) {
	batch := strconv.Itoa(b)
	for _, op := range opcount.Ops() {
		batchOperations.WithLabelValues(set, batch, op.String()).Set(float64(c.Get(op)))
	}
}

// Audited increments the audited isogeny counter.
func Audited(set string) {
	isogeniesAudited.WithLabelValues(set).Inc()
}

// Mismatch increments the count mismatch counter.
func Mismatch(set string) {
	countMismatches.WithLabelValues(set).Inc()
}

// SampleAttempts observes the elligator draws of one kernel point.
func SampleAttempts(n int) {
	sampleAttempts.Observe(float64(n))
}
