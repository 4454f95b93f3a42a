// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

//go:build noprometheus
// +build noprometheus

package instrument

import (
	"net/http"

	"gopkg.in/op/go-logging.v1"

	"github.com/katzenpost/matryoshka/core/opcount"
)

// StartPrometheusListener does nothing
func StartPrometheusListener(address string, log *logging.Logger) *http.Server { return nil }

// BatchOperations does nothing
func BatchOperations(set string, b int, c opcount.Counts) {}

// Audited does nothing
func Audited(set string) {}

// Mismatch does nothing
func Mismatch(set string) {}

// SampleAttempts does nothing
func SampleAttempts(n int) {}
