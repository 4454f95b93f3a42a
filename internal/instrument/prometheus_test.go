// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !noprometheus
// +build !noprometheus

package instrument

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/katzenpost/matryoshka/core/opcount"
)

func TestMetrics(t *testing.T) {
	require := require.New(t)

	BatchOperations("p103", 2, opcount.Counts{Add: 10, Mul: 20, Sqr: 5, Pow: 2})
	require.Equal(20.0, testutil.ToFloat64(batchOperations.WithLabelValues("p103", "2", "mul")))
	require.Equal(2.0, testutil.ToFloat64(batchOperations.WithLabelValues("p103", "2", "pow")))
	require.Equal(0.0, testutil.ToFloat64(batchOperations.WithLabelValues("p103", "2", "inv")))

	before := testutil.ToFloat64(isogeniesAudited.WithLabelValues("p103"))
	Audited("p103")
	Audited("p103")
	require.Equal(before+2, testutil.ToFloat64(isogeniesAudited.WithLabelValues("p103")))

	Mismatch("p512")
	require.Equal(1.0, testutil.ToFloat64(countMismatches.WithLabelValues("p512")))

	SampleAttempts(3)
	require.Equal(1, testutil.CollectAndCount(sampleAttempts))
}
