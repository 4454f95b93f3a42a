// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package reference is an affine, variable time model of Montgomery curves
// y^2 = x^3 + ax^2 + x over a prime p = 3 mod 4, and of odd degree Vélu
// isogenies between them. It shares no code with the projective
// implementation and is only used to check it.
package reference

import (
	"errors"
	"math/big"
)

// ErrNotOnCurve is returned by LiftX when x is not the abscissa of a point.
var ErrNotOnCurve = errors.New("reference: x is not on the curve")

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	six   = big.NewInt(6)
)

// Point is an affine point. Inf marks the point at infinity.
type Point struct {
	X, Y *big.Int
	Inf  bool
}

// Curve is y^2 = x^3 + ax^2 + x modulo P.
type Curve struct {
	P *big.Int
	A *big.Int
}

// New returns the curve with coefficient a modulo p.
func New(p, a *big.Int) *Curve {
	return &Curve{P: new(big.Int).Set(p), A: new(big.Int).Mod(a, p)}
}

// Twist returns E_{-a}. A point with abscissa x on the quadratic twist of E_a
// corresponds to the point with abscissa -x on E_{-a}.
func (c *Curve) Twist() *Curve {
	return New(c.P, new(big.Int).Neg(c.A))
}

func (c *Curve) mod(v *big.Int) *big.Int {
	return v.Mod(v, c.P)
}

// Neg returns -v mod P.
func (c *Curve) Neg(v *big.Int) *big.Int {
	return c.mod(new(big.Int).Neg(v))
}

// Rhs returns x^3 + ax^2 + x.
func (c *Curve) Rhs(x *big.Int) *big.Int {
	t := new(big.Int).Add(x, c.A)
	t.Mul(t, x)
	t.Add(t, one)
	t.Mul(t, x)
	return c.mod(t)
}

// OnCurve reports whether x is the abscissa of a rational point.
func (c *Curve) OnCurve(x *big.Int) bool {
	return big.Jacobi(c.Rhs(x), c.P) >= 0
}

// OnTwist reports whether x is the abscissa of a point on the twist.
func (c *Curve) OnTwist(x *big.Int) bool {
	return big.Jacobi(c.Rhs(x), c.P) <= 0
}

// LiftX returns one of the two points with abscissa x.
func (c *Curve) LiftX(x *big.Int) (Point, error) {
	v := c.Rhs(x)
	e := new(big.Int).Add(c.P, one)
	e.Rsh(e, 2)
	y := new(big.Int).Exp(v, e, c.P)
	if c.mod(new(big.Int).Mul(y, y)).Cmp(v) != 0 {
		return Point{}, ErrNotOnCurve
	}
	return Point{X: c.mod(new(big.Int).Set(x)), Y: y}, nil
}

// Add returns P+Q with the chord and tangent law.
func (c *Curve) Add(p, q Point) Point {
	switch {
	case p.Inf:
		return q
	case q.Inf:
		return p
	}

	var lambda *big.Int
	if p.X.Cmp(q.X) == 0 {
		if c.mod(new(big.Int).Add(p.Y, q.Y)).Sign() == 0 {
			return Point{Inf: true}
		}
		// (3x^2 + 2ax + 1) / 2y
		num := new(big.Int).Mul(three, new(big.Int).Mul(p.X, p.X))
		num.Add(num, new(big.Int).Mul(two, new(big.Int).Mul(c.A, p.X)))
		num.Add(num, one)
		den := new(big.Int).Mul(two, p.Y)
		lambda = c.mod(num.Mul(num, new(big.Int).ModInverse(c.mod(den), c.P)))
	} else {
		num := new(big.Int).Sub(q.Y, p.Y)
		den := c.mod(new(big.Int).Sub(q.X, p.X))
		lambda = c.mod(num.Mul(num, new(big.Int).ModInverse(den, c.P)))
	}

	x := new(big.Int).Mul(lambda, lambda)
	x.Sub(x, c.A)
	x.Sub(x, p.X)
	x.Sub(x, q.X)
	c.mod(x)
	y := new(big.Int).Sub(p.X, x)
	y.Mul(y, lambda)
	y.Sub(y, p.Y)
	return Point{X: x, Y: c.mod(y)}
}

// ScalarMult returns [k]P by double and add.
func (c *Curve) ScalarMult(p Point, k *big.Int) Point {
	r := Point{Inf: true}
	for i := k.BitLen() - 1; i >= 0; i-- {
		r = c.Add(r, r)
		if k.Bit(i) == 1 {
			r = c.Add(r, p)
		}
	}
	return r
}

// Multiples returns the abscissas of P, 2P, ..., dP.
func (c *Curve) Multiples(p Point, d int) []*big.Int {
	out := make([]*big.Int, 0, d)
	q := p
	for i := 0; i < d; i++ {
		out = append(out, q.X)
		q = c.Add(q, p)
	}
	return out
}

// Isogeny is the Vélu isogeny with kernel generated by a point of odd
// order l, described by the abscissas of its first (l-1)/2 multiples.
type Isogeny struct {
	c      *Curve
	kernel []*big.Int
}

// NewIsogeny builds the degree l isogeny with kernel <P>.
func (c *Curve) NewIsogeny(p Point, l int) *Isogeny {
	return &Isogeny{c: c, kernel: c.Multiples(p, (l-1)/2)}
}

// Codomain returns a' = (6*sum(1/x_i) - 6*sum(x_i) + a) * prod(x_i)^2.
func (iso *Isogeny) Codomain() *big.Int {
	c := iso.c
	sigma, sigmaInv, pi := new(big.Int), new(big.Int), big.NewInt(1)
	for _, x := range iso.kernel {
		sigma.Add(sigma, x)
		sigmaInv.Add(sigmaInv, new(big.Int).ModInverse(x, c.P))
		c.mod(pi.Mul(pi, x))
	}
	t := new(big.Int).Sub(sigmaInv, sigma)
	t.Mul(t, six)
	t.Add(t, c.A)
	t.Mul(t, pi)
	t.Mul(t, pi)
	return c.mod(t)
}

// Map returns x * prod(((x*x_i - 1) / (x - x_i))^2).
func (iso *Isogeny) Map(x *big.Int) *big.Int {
	c := iso.c
	r := new(big.Int).Set(x)
	for _, xi := range iso.kernel {
		num := c.mod(new(big.Int).Sub(new(big.Int).Mul(x, xi), one))
		den := c.mod(new(big.Int).Sub(x, xi))
		f := c.mod(num.Mul(num, new(big.Int).ModInverse(den, c.P)))
		c.mod(r.Mul(r, f.Mul(f, f)))
	}
	return r
}
