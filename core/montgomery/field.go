// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package montgomery

import "math/big"

// Field is the prime field capability the curve and isogeny code is
// generic over. Both fp.Field and vartime.Field satisfy it.
//
// Choices (the results of Equal, IsZero and Legendre, and the c argument
// of Select) are the integers 0 and 1.
type Field[E any] interface {
	Modulus() *big.Int

	Zero() E
	One() E
	FromUint64(v uint64) E
	FromBig(v *big.Int) E
	ToBig(x E) *big.Int

	Add(x, y E) E
	Sub(x, y E) E
	Neg(x E) E
	Mul(x, y E) E
	Sqr(x E) E
	Pow(x E, e *big.Int, nbits int) E
	Inv(x E) E
	Legendre(x E) int

	Equal(x, y E) int
	IsZero(x E) int
	Select(c int, x, y E) E
}
