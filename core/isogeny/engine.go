// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package isogeny implements constant-time odd degree isogenies between
// Montgomery curves with traditional Vélu formulas, padded per batch so
// that every degree of a batch costs the same field operations.
//
// The engine never inverts. Loop bounds, exponent lengths and memory access
// depend only on the batch of the secret degree index, never on the index
// itself, on which elligator point is the kernel, or on how many points
// are pushed.
package isogeny

import (
	"errors"
	"fmt"

	"github.com/katzenpost/matryoshka/core/montgomery"
	"github.com/katzenpost/matryoshka/core/params"
)

// ErrFieldMismatch is returned by New when the field modulus is not the
// prime of the parameter set.
var ErrFieldMismatch = errors.New("isogeny: field modulus does not match the parameter set")

// Point is an x-only projective point.
type Point[E any] = montgomery.Point[E]

// Coefficients is a projective curve coefficient (A:C).
type Coefficients[E any] = montgomery.Coefficients[E]

// Engine evaluates isogenies for one parameter set over one field.
type Engine[E any] struct {
	f      montgomery.Field[E]
	curve  *montgomery.Curve[E]
	params *params.Set
}

// New returns an Engine. The field must be built over set.Prime().
func New[E any](f montgomery.Field[E], set *params.Set) (*Engine[E], error) {
	if set == nil {
		return nil, fmt.Errorf("%w: nil parameter set", params.ErrInvalidParameters)
	}
	if f.Modulus().Cmp(set.Prime()) != 0 {
		return nil, ErrFieldMismatch
	}
	return &Engine[E]{
		f:      f,
		curve:  montgomery.New(f),
		params: set,
	}, nil
}

// Curve returns the curve arithmetic the engine uses.
func (e *Engine[E]) Curve() *montgomery.Curve[E] {
	return e.curve
}

// Params returns the parameter set.
func (e *Engine[E]) Params() *params.Set {
	return e.params
}

// MulPublic returns [L[index]]P. index must be public.
func (e *Engine[E]) MulPublic(p, a24 Point[E], index int) Point[E] {
	return e.curve.MulPublic(p, a24, e.params.Degree(index))
}
