// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package vartime is a math/big backed prime field with the same method set
// as fp.Field. It is NOT constant time and exists to cross-check the
// constant-time field and the generic curve code.
package vartime

import (
	"math/big"

	"github.com/katzenpost/matryoshka/core/opcount"
)

// Element is a canonical residue. Operations never mutate their inputs.
type Element struct {
	v *big.Int
}

// String returns the decimal representation of x.
func (x Element) String() string {
	if x.v == nil {
		return "0"
	}
	return x.v.String()
}

// Field is the integers modulo p.
type Field struct {
	p       *big.Int
	pMinus2 *big.Int
	counter *opcount.Counter
}

// New returns the field of integers modulo p. The counter may be nil.
func New(p *big.Int, counter *opcount.Counter) *Field {
	return &Field{
		p:       new(big.Int).Set(p),
		pMinus2: new(big.Int).Sub(p, big.NewInt(2)),
		counter: counter,
	}
}

func (f *Field) wrap(v *big.Int) Element {
	return Element{v: v.Mod(v, f.p)}
}

func val(x Element) *big.Int {
	if x.v == nil {
		return new(big.Int)
	}
	return x.v
}

func (f *Field) Modulus() *big.Int { return new(big.Int).Set(f.p) }

func (f *Field) Zero() Element { return Element{v: new(big.Int)} }

func (f *Field) One() Element { return Element{v: big.NewInt(1)} }

func (f *Field) FromUint64(v uint64) Element {
	return f.wrap(new(big.Int).SetUint64(v))
}

func (f *Field) FromBig(v *big.Int) Element { return f.wrap(new(big.Int).Set(v)) }

func (f *Field) ToBig(x Element) *big.Int { return new(big.Int).Set(val(x)) }

func (f *Field) Add(x, y Element) Element {
	f.counter.Inc(opcount.Add)
	return f.wrap(new(big.Int).Add(val(x), val(y)))
}

func (f *Field) Sub(x, y Element) Element {
	f.counter.Inc(opcount.Add)
	return f.wrap(new(big.Int).Sub(val(x), val(y)))
}

func (f *Field) Neg(x Element) Element {
	return f.wrap(new(big.Int).Neg(val(x)))
}

func (f *Field) Mul(x, y Element) Element {
	f.counter.Inc(opcount.Mul)
	return f.wrap(new(big.Int).Mul(val(x), val(y)))
}

func (f *Field) Sqr(x Element) Element {
	f.counter.Inc(opcount.Sqr)
	return f.wrap(new(big.Int).Mul(val(x), val(x)))
}

// Pow ignores nbits beyond checking that e fits.
func (f *Field) Pow(x Element, e *big.Int, nbits int) Element {
	if e.Sign() < 0 || e.BitLen() > nbits {
		panic("vartime: exponent does not fit in the requested bit length")
	}
	f.counter.Inc(opcount.Pow)
	return Element{v: new(big.Int).Exp(val(x), e, f.p)}
}

func (f *Field) Inv(x Element) Element {
	f.counter.Inc(opcount.Inv)
	return Element{v: new(big.Int).Exp(val(x), f.pMinus2, f.p)}
}

func (f *Field) Legendre(x Element) int {
	f.counter.Inc(opcount.Pow)
	if big.Jacobi(val(x), f.p) == 1 {
		return 1
	}
	return 0
}

func (f *Field) Equal(x, y Element) int {
	if val(x).Cmp(val(y)) == 0 {
		return 1
	}
	return 0
}

func (f *Field) IsZero(x Element) int {
	if val(x).Sign() == 0 {
		return 1
	}
	return 0
}

func (f *Field) Select(c int, x, y Element) Element {
	if c == 1 {
		return Element{v: new(big.Int).Set(val(x))}
	}
	return Element{v: new(big.Int).Set(val(y))}
}
