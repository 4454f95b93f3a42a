// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package montgomery

import (
	"fmt"
	"io"
	"math/big"
)

// Elligator maps the curve (A:C) and a field element u drawn from rng to a
// pair (plus, minus), where plus lies on the curve and minus on its
// quadratic twist. p must be 3 mod 4 so that -1 is a non-square.
//
// For a != 0 the candidates are x1 = a and x2 = -a*u^2 over u^2-1. The
// a == 0 curve uses x1 = u and x2 = -u instead. One Legendre symbol of the
// curve equation at x1 decides which candidate goes where. Degenerate u
// (u^2 == 1 or u == 0) yields infinity and the caller resamples.
func (c *Curve[E]) Elligator(a Coefficients[E], rng io.Reader) (plus, minus Point[E], err error) {
	u, err := c.randomElement(rng)
	if err != nil {
		return plus, minus, err
	}
	return c.elligatorWith(a, u)
}

func (c *Curve[E]) elligatorWith(a Coefficients[E], u E) (plus, minus Point[E], err error) {
	f := c.f

	u2 := f.Sqr(u)
	d := f.Sub(u2, f.One())

	isZero := f.IsZero(a.X)
	uz := f.Mul(u, a.Z)
	x1 := f.Select(isZero, uz, a.X)
	x2 := f.Select(isZero, f.Neg(uz), f.Neg(f.Mul(a.X, u2)))
	z := f.Select(isZero, a.Z, f.Mul(a.Z, d))

	// s = C*X1*Z*(C*X1^2 + A*X1*Z + C*Z^2), the curve equation scaled by a square.
	cx1 := f.Mul(a.Z, x1)
	t := f.Add(f.Mul(cx1, x1), f.Mul(f.Mul(a.X, x1), z))
	t = f.Add(t, f.Mul(a.Z, f.Sqr(z)))
	s := f.Mul(f.Mul(cx1, z), t)

	sq := f.Legendre(s)
	plus = Point[E]{X: f.Select(sq, x1, x2), Z: z}
	minus = Point[E]{X: f.Select(sq, x2, x1), Z: z}
	return plus, minus, nil
}

func (c *Curve[E]) randomElement(rng io.Reader) (E, error) {
	var zero E
	p := c.f.Modulus()
	// 64 extra bits keep the modular reduction bias negligible.
	buf := make([]byte, (p.BitLen()+7)/8+8)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return zero, fmt.Errorf("montgomery: failed to read elligator seed: %w", err)
	}
	return c.f.FromBig(new(big.Int).SetBytes(buf)), nil
}
