// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package montgomery implements x-only projective arithmetic on Montgomery
// curves Cy^2 = x^3 + (A/C)x^2 + x over a prime field.
//
// Everything here returns fresh values and never mutates its arguments.
// Double, Add, Select, CondSwap and Elligator run in constant time with
// respect to point values. Mul, MulPublic and IsInfinity are for public
// data only.
package montgomery

import (
	"math/big"
	"math/bits"
)

// Point is the projective x-coordinate (X:Z). Z == 0 is the point at infinity.
type Point[E any] struct {
	X E
	Z E
}

// Coefficients is a projective curve coefficient (A:C) with C != 0.
type Coefficients[E any] = Point[E]

// Curve bundles the field with the x-only formulas.
type Curve[E any] struct {
	f Field[E]
}

// New returns a Curve over f.
func New[E any](f Field[E]) *Curve[E] {
	return &Curve[E]{f: f}
}

// Field returns the underlying field.
func (c *Curve[E]) Field() Field[E] {
	return c.f
}

// FromAffine returns (a:1).
func (c *Curve[E]) FromAffine(a *big.Int) Point[E] {
	return Point[E]{X: c.f.FromBig(a), Z: c.f.One()}
}

// Infinity returns (1:0).
func (c *Curve[E]) Infinity() Point[E] {
	return Point[E]{X: c.f.One(), Z: c.f.Zero()}
}

// A24 returns (A+2C : 4C) for the curve (A:C).
func (c *Curve[E]) A24(a Coefficients[E]) Point[E] {
	f := c.f
	c2 := f.Add(a.Z, a.Z)
	return Point[E]{
		X: f.Add(a.X, c2),
		Z: f.Add(c2, c2),
	}
}

// Affine returns X/Z. It inverts, so it stays out of the isogeny hot path.
func (c *Curve[E]) Affine(p Point[E]) *big.Int {
	return c.f.ToBig(c.f.Mul(p.X, c.f.Inv(p.Z)))
}

// Double returns [2]P given A24 = (A+2C : 4C).
func (c *Curve[E]) Double(p, a24 Point[E]) Point[E] {
	f := c.f
	t0 := f.Sqr(f.Sub(p.X, p.Z))
	t1 := f.Sqr(f.Add(p.X, p.Z))
	z := f.Mul(a24.Z, t0)
	x := f.Mul(z, t1)
	t1 = f.Sub(t1, t0)
	t0 = f.Mul(a24.X, t1)
	z = f.Mul(f.Add(z, t0), t1)
	return Point[E]{X: x, Z: z}
}

// Add returns P+Q given the difference P-Q.
func (c *Curve[E]) Add(p, q, pmq Point[E]) Point[E] {
	f := c.f
	t0 := f.Mul(f.Add(p.X, p.Z), f.Sub(q.X, q.Z))
	t1 := f.Mul(f.Sub(p.X, p.Z), f.Add(q.X, q.Z))
	return Point[E]{
		X: f.Mul(pmq.Z, f.Sqr(f.Add(t0, t1))),
		Z: f.Mul(pmq.X, f.Sqr(f.Sub(t0, t1))),
	}
}

// Mul returns [k]P with a Montgomery ladder that always runs nbits steps.
// The scalar must be public; only its bit length is hidden.
func (c *Curve[E]) Mul(p, a24 Point[E], k *big.Int, nbits int) Point[E] {
	if k.Sign() < 0 || k.BitLen() > nbits {
		panic("montgomery: scalar does not fit in the requested bit length")
	}
	r0, r1 := c.Infinity(), p
	for i := nbits - 1; i >= 0; i-- {
		b := int(k.Bit(i))
		r0, r1 = c.CondSwap(b, r0, r1)
		r0, r1 = c.Double(r0, a24), c.Add(r0, r1, p)
		r0, r1 = c.CondSwap(b, r0, r1)
	}
	return r0
}

// MulPublic returns [l]P for a public degree l.
func (c *Curve[E]) MulPublic(p, a24 Point[E], l uint64) Point[E] {
	return c.Mul(p, a24, new(big.Int).SetUint64(l), bits.Len64(l))
}

// IsInfinity reports whether Z == 0. Only for public points.
func (c *Curve[E]) IsInfinity(p Point[E]) bool {
	return c.f.IsZero(p.Z) == 1
}

// Equivalent returns 1 if X1*Z2 == X2*Z1, and 0 otherwise.
func (c *Curve[E]) Equivalent(p, q Point[E]) int {
	return c.f.Equal(c.f.Mul(p.X, q.Z), c.f.Mul(q.X, p.Z))
}

// Select returns p if choice == 1 and q if choice == 0.
func (c *Curve[E]) Select(choice int, p, q Point[E]) Point[E] {
	return Point[E]{
		X: c.f.Select(choice, p.X, q.X),
		Z: c.f.Select(choice, p.Z, q.Z),
	}
}

// CondSwap returns (q, p) if choice == 1 and (p, q) if choice == 0.
func (c *Curve[E]) CondSwap(choice int, p, q Point[E]) (Point[E], Point[E]) {
	return c.Select(choice, q, p), c.Select(choice, p, q)
}
