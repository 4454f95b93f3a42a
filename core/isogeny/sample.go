// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package isogeny

import (
	"errors"
	"io"
)

// MaxSampleAttempts bounds the elligator retries of SampleKernelPoint.
const MaxSampleAttempts = 64

// ErrSampleExhausted is returned when no kernel point was found.
var ErrSampleExhausted = errors.New("isogeny: kernel point sampling exhausted its attempts")

// Sample is a kernel point together with the elligator pair it came from.
type Sample[E any] struct {
	// Kernel has order exactly L[index].
	Kernel Point[E]
	// Plus lies on the curve and Minus on its twist.
	Plus  Point[E]
	Minus Point[E]
	// Twist reports whether Kernel was derived from Minus.
	Twist bool
	// Attempts is the number of elligator draws used.
	Attempts int
}

// SampleKernelPoint draws elligator pairs until the chosen side, with the
// cofactor 4 and every other degree cleared, is not the point at infinity.
// It branches on the points it computes, so the index, the side and the
// curve must all be public.
func (e *Engine[E]) SampleKernelPoint(a Coefficients[E], index int, twist bool, rng io.Reader) (*Sample[E], error) {
	a24 := e.curve.A24(a)
	side := 0
	if twist {
		side = 1
	}

	for attempt := 1; attempt <= MaxSampleAttempts; attempt++ {
		plus, minus, err := e.curve.Elligator(a, rng)
		if err != nil {
			return nil, err
		}
		k := e.curve.Select(side, minus, plus)
		k = e.curve.Double(k, a24)
		k = e.curve.Double(k, a24)
		for j := 0; j < e.params.NumDegrees() && !e.curve.IsInfinity(k); j++ {
			if j == index {
				continue
			}
			k = e.MulPublic(k, a24, j)
		}
		if e.curve.IsInfinity(k) {
			continue
		}
		return &Sample[E]{
			Kernel:   k,
			Plus:     plus,
			Minus:    minus,
			Twist:    twist,
			Attempts: attempt,
		}, nil
	}
	return nil, ErrSampleExhausted
}
