// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package isogeny

import (
	"crypto/subtle"
	"math/big"
	"math/bits"
)

// Hat is (X+Z, X-Z) of a kernel multiple.
type Hat[E any] struct {
	Plus  E
	Minus E
}

// KernelMultiples returns [P, 2P, ..., dFake*P] using one doubling and
// dFake-2 differential additions. Entries past the order of P are
// meaningless but computed all the same.
func (e *Engine[E]) KernelMultiples(dFake int, p, a24 Point[E]) []Point[E] {
	if dFake < 1 {
		panic("isogeny: kernel multiple count must be positive")
	}
	out := make([]Point[E], dFake)
	out[0] = p
	if dFake > 1 {
		out[1] = e.curve.Double(p, a24)
	}
	for i := 2; i < dFake; i++ {
		out[i] = e.curve.Add(out[i-1], p, out[i-2])
	}
	return out
}

// Hats returns the (X+Z, X-Z) pairs of points.
func (e *Engine[E]) Hats(points []Point[E]) []Hat[E] {
	hats := make([]Hat[E], len(points))
	for i, p := range points {
		hats[i] = Hat[E]{
			Plus:  e.f.Add(p.X, p.Z),
			Minus: e.f.Sub(p.X, p.Z),
		}
	}
	return hats
}

// IsogenousCurve returns the codomain of the degree 2d+1 isogeny whose
// kernel multiples are the first d of hats, using the twisted Edwards form
// (a:d) = (A+2C : A-2C). All dFake hats are folded in; those at or past d
// are replaced by one with a constant-time select.
func (e *Engine[E]) IsogenousCurve(d, dFake int, hats []Hat[E], a Coefficients[E]) Coefficients[E] {
	checkPadding(d, dFake, hats)
	f := e.f

	c2 := f.Add(a.Z, a.Z)
	aE := f.Add(a.X, c2)
	dE := f.Sub(a.X, c2)

	one := f.One()
	prodPlus, prodMinus := one, one
	for i := 0; i < dFake; i++ {
		pad := subtle.ConstantTimeLessOrEq(d, i)
		prodPlus = f.Mul(prodPlus, f.Select(pad, one, hats[i].Plus))
		prodMinus = f.Mul(prodMinus, f.Select(pad, one, hats[i].Minus))
	}

	l := big.NewInt(int64(2*d + 1))
	nbits := bits.Len(uint(2*dFake + 1))
	aE = f.Mul(f.Pow(aE, l, nbits), e.pow8(prodPlus))
	dE = f.Mul(f.Pow(dE, l, nbits), e.pow8(prodMinus))

	s := f.Add(aE, dE)
	return Coefficients[E]{
		X: f.Add(s, s),
		Z: f.Sub(aE, dE),
	}
}

// EvaluateAt pushes t through the same isogeny as IsogenousCurve, with the
// same padding.
func (e *Engine[E]) EvaluateAt(d, dFake int, hats []Hat[E], t Point[E]) Point[E] {
	checkPadding(d, dFake, hats)
	f := e.f

	tPlus := f.Add(t.X, t.Z)
	tMinus := f.Sub(t.X, t.Z)

	one := f.One()
	num, den := one, one
	for i := 0; i < dFake; i++ {
		pad := subtle.ConstantTimeLessOrEq(d, i)
		t2 := f.Mul(tMinus, hats[i].Plus)
		t3 := f.Mul(tPlus, hats[i].Minus)
		num = f.Mul(num, f.Select(pad, one, f.Add(t2, t3)))
		den = f.Mul(den, f.Select(pad, one, f.Sub(t2, t3)))
	}

	return Point[E]{
		X: f.Mul(t.X, f.Sqr(num)),
		Z: f.Mul(t.Z, f.Sqr(den)),
	}
}

func (e *Engine[E]) pow8(x E) E {
	return e.f.Sqr(e.f.Sqr(e.f.Sqr(x)))
}

func checkPadding[E any](d, dFake int, hats []Hat[E]) {
	switch {
	case d < 1:
		panic("isogeny: half degree must be positive")
	case dFake < d:
		panic("isogeny: padded half degree is smaller than the half degree")
	case len(hats) != dFake:
		panic("isogeny: kernel hat count does not match the padded half degree")
	}
}
