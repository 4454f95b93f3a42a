// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package isogeny

import "crypto/subtle"

// MaxPush is the number of auxiliary point slots.
const MaxPush = 2

// Matryoshka computes the isogeny of degree L[index] with kernel <P> from
// the curve (A:C), padded to the largest degree of the batch of index. It
// returns the codomain and the images of ts. Slot j holds the image of
// ts[j] when j < pushCount and ts[j] itself otherwise; both slots are
// evaluated either way.
//
// index and pushCount may be secret. An index outside the degree table or
// a pushCount outside [0, MaxPush] panics.
func (e *Engine[E]) Matryoshka(a Coefficients[E], ts [MaxPush]Point[E], pushCount int, p Point[E], index int) (Coefficients[E], [MaxPush]Point[E]) {
	if pushCount < 0 || pushCount > MaxPush {
		panic("isogeny: push count out of range")
	}

	l, lFake := e.params.Lookup(index)
	d := int((l - 1) / 2)
	dFake := int((lFake - 1) / 2)

	a24 := e.curve.A24(a)
	hats := e.Hats(e.KernelMultiples(dFake, p, a24))
	aNew := e.IsogenousCurve(d, dFake, hats, a)

	var out [MaxPush]Point[E]
	for j := range ts {
		image := e.EvaluateAt(d, dFake, hats, ts[j])
		pushed := subtle.ConstantTimeLessOrEq(j+1, pushCount)
		out[j] = e.curve.Select(pushed, image, ts[j])
	}
	return aNew, out
}
