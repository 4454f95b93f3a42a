// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package opcount provides field operation counters used to audit the
// constant operation count of the isogeny code.
//
// A Counter is owned by whoever constructs the field it is injected into.
// It is not safe for concurrent use. All methods accept a nil receiver, in
// which case counting is disabled, so production builds simply do not
// inject one.
package opcount

import "fmt"

// Op identifies a counted field operation.
type Op int

const (
	// Add covers additions and subtractions.
	Add Op = iota
	// Mul covers general multiplications.
	Mul
	// Sqr covers squarings.
	Sqr
	// Pow covers exponentiations, including Legendre symbols.
	Pow
	// Inv covers inversions.
	Inv

	numOps
)

var opNames = [numOps]string{"add", "mul", "sqr", "pow", "inv"}

// String returns the lower case name of the operation.
func (o Op) String() string {
	if o < 0 || o >= numOps {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return opNames[o]
}

// Ops returns every counted operation in display order.
func Ops() []Op {
	return []Op{Add, Mul, Sqr, Pow, Inv}
}

// Counts is an immutable snapshot of a Counter.
type Counts struct {
	Add uint64 `cbor:"add"`
	Mul uint64 `cbor:"mul"`
	Sqr uint64 `cbor:"sqr"`
	Pow uint64 `cbor:"pow"`
	Inv uint64 `cbor:"inv"`
}

// Get returns the count for op.
func (c Counts) Get(op Op) uint64 {
	switch op {
	case Add:
		return c.Add
	case Mul:
		return c.Mul
	case Sqr:
		return c.Sqr
	case Pow:
		return c.Pow
	case Inv:
		return c.Inv
	}
	panic("opcount: invalid op")
}

// Sub returns c - o, op by op.
func (c Counts) Sub(o Counts) Counts {
	return Counts{
		Add: c.Add - o.Add,
		Mul: c.Mul - o.Mul,
		Sqr: c.Sqr - o.Sqr,
		Pow: c.Pow - o.Pow,
		Inv: c.Inv - o.Inv,
	}
}

// Runtime formats the multiplication, squaring and addition counts.
func (c Counts) Runtime(label string) string {
	return fmt.Sprintf("| %s: %7dM + %7dS + %7da", label, c.Mul, c.Sqr, c.Add)
}

// PowInv formats the exponentiation and inversion counts.
func (c Counts) PowInv(label string) string {
	return fmt.Sprintf("| %s: %2dP + %2dI", label, c.Pow, c.Inv)
}

// Counter accumulates field operation counts.
type Counter struct {
	counts [numOps]uint64
}

// New returns a zeroed Counter.
func New() *Counter {
	return new(Counter)
}

// Inc adds one to the count of op.
func (c *Counter) Inc(op Op) {
	if c == nil {
		return
	}
	c.counts[op]++
}

// Reset zeroes every count.
func (c *Counter) Reset() {
	if c == nil {
		return
	}
	c.counts = [numOps]uint64{}
}

// Snapshot returns the current counts.
func (c *Counter) Snapshot() Counts {
	if c == nil {
		return Counts{}
	}
	return Counts{
		Add: c.counts[Add],
		Mul: c.counts[Mul],
		Sqr: c.counts[Sqr],
		Pow: c.counts[Pow],
		Inv: c.counts[Inv],
	}
}
