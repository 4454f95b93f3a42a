// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package fp implements constant-time arithmetic modulo a large odd prime
// on top of saferith, adding operation counting and the choice convention
// (the integers 0 and 1) the curve code is written against.
//
// Every element is announced at the bit length of the modulus, so only that
// public length influences timing. Setup helpers that go through math/big
// (New, FromBig, ToBig, SetBytes) are not constant time and must only see
// public values or final results.
package fp

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/katzenpost/matryoshka/core/opcount"
)

// ErrInvalidModulus is returned by New for moduli it cannot serve.
var ErrInvalidModulus = errors.New("fp: invalid modulus")

// Element is a canonical residue. Operations never mutate their inputs.
// The zero value is zero.
type Element struct {
	n *saferith.Nat
}

// Field is a prime field together with an optional operation counter.
type Field struct {
	m        *saferith.Modulus
	modulus  *big.Int
	bits     int
	byteSize int

	zero Element
	one  Element

	pMinus2 *saferith.Nat
	halfPm1 *saferith.Nat
	counter *opcount.Counter
}

// New returns the field of integers modulo p. The counter may be nil.
func New(p *big.Int, counter *opcount.Counter) (*Field, error) {
	if p == nil || p.Bit(0) == 0 || p.Cmp(big.NewInt(3)) < 0 {
		return nil, ErrInvalidModulus
	}

	f := &Field{
		m:        saferith.ModulusFromBytes(p.Bytes()),
		modulus:  new(big.Int).Set(p),
		bits:     p.BitLen(),
		byteSize: (p.BitLen() + 7) / 8,
		counter:  counter,
	}
	f.zero = f.FromUint64(0)
	f.one = f.FromUint64(1)
	f.pMinus2 = new(saferith.Nat).SetBig(new(big.Int).Sub(p, big.NewInt(2)), f.bits)
	f.halfPm1 = new(saferith.Nat).SetBig(new(big.Int).Rsh(p, 1), f.bits)
	return f, nil
}

// Counter returns the injected operation counter, possibly nil.
func (f *Field) Counter() *opcount.Counter {
	return f.counter
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// Bits returns the bit length of p.
func (f *Field) Bits() int {
	return f.bits
}

// Zero returns 0.
func (f *Field) Zero() Element {
	return f.zero
}

// One returns 1.
func (f *Field) One() Element {
	return f.one
}

// FromUint64 returns v mod p.
func (f *Field) FromUint64(v uint64) Element {
	return f.FromBig(new(big.Int).SetUint64(v))
}

// FromBig returns v mod p. Not constant time.
func (f *Field) FromBig(v *big.Int) Element {
	r := new(big.Int).Mod(v, f.modulus)
	return Element{n: new(saferith.Nat).SetBig(r, f.bits)}
}

// ToBig returns the canonical representative of x.
func (f *Field) ToBig(x Element) *big.Int {
	return f.nat(x).Big()
}

// Bytes returns the big-endian canonical encoding of x.
func (f *Field) Bytes(x Element) []byte {
	return f.nat(x).FillBytes(make([]byte, f.byteSize))
}

// SetBytes decodes a big-endian canonical encoding.
func (f *Field) SetBytes(b []byte) (Element, error) {
	if len(b) != f.byteSize {
		return Element{}, fmt.Errorf("fp: invalid encoding length %d", len(b))
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(f.modulus) >= 0 {
		return Element{}, errors.New("fp: encoding is not canonical")
	}
	return f.FromBig(v), nil
}

// Add returns x + y.
func (f *Field) Add(x, y Element) Element {
	f.counter.Inc(opcount.Add)
	return Element{n: new(saferith.Nat).ModAdd(f.nat(x), f.nat(y), f.m)}
}

// Sub returns x - y.
func (f *Field) Sub(x, y Element) Element {
	f.counter.Inc(opcount.Add)
	return Element{n: new(saferith.Nat).ModSub(f.nat(x), f.nat(y), f.m)}
}

// Neg returns -x. Negation is not counted.
func (f *Field) Neg(x Element) Element {
	return Element{n: new(saferith.Nat).ModNeg(f.nat(x), f.m)}
}

// Mul returns x * y.
func (f *Field) Mul(x, y Element) Element {
	f.counter.Inc(opcount.Mul)
	return Element{n: new(saferith.Nat).ModMul(f.nat(x), f.nat(y), f.m)}
}

// Sqr returns x^2.
func (f *Field) Sqr(x Element) Element {
	f.counter.Inc(opcount.Sqr)
	n := f.nat(x)
	return Element{n: new(saferith.Nat).ModMul(n, n, f.m)}
}

// Pow returns x^e with the exponent announced at nbits bits, so the cost
// depends on nbits and not on e. The exponent must fit in nbits.
func (f *Field) Pow(x Element, e *big.Int, nbits int) Element {
	if e.Sign() < 0 || e.BitLen() > nbits {
		panic("fp: exponent does not fit in the requested bit length")
	}
	f.counter.Inc(opcount.Pow)
	return f.exp(x, new(saferith.Nat).SetBig(e, nbits))
}

// Inv returns x^-1 as x^(p-2). The inverse of zero is zero.
func (f *Field) Inv(x Element) Element {
	f.counter.Inc(opcount.Inv)
	return f.exp(x, f.pMinus2)
}

// Legendre returns 1 when x is a non-zero square, and 0 otherwise.
func (f *Field) Legendre(x Element) int {
	f.counter.Inc(opcount.Pow)
	return f.Equal(f.exp(x, f.halfPm1), f.one)
}

// Equal returns 1 if x == y and 0 otherwise, in constant time.
func (f *Field) Equal(x, y Element) int {
	return int(f.nat(x).Eq(f.nat(y)))
}

// IsZero returns 1 if x == 0 and 0 otherwise, in constant time.
func (f *Field) IsZero(x Element) int {
	return int(f.nat(x).EqZero())
}

// Select returns x if c == 1 and y if c == 0. c must be 0 or 1.
func (f *Field) Select(c int, x, y Element) Element {
	z := new(saferith.Nat).SetNat(f.nat(y))
	return Element{n: z.CondAssign(saferith.Choice(c&1), f.nat(x))}
}

func (f *Field) exp(x Element, e *saferith.Nat) Element {
	return Element{n: new(saferith.Nat).Exp(f.nat(x), e, f.m)}
}

func (f *Field) nat(x Element) *saferith.Nat {
	if x.n == nil {
		return f.zero.n
	}
	return x.n
}
