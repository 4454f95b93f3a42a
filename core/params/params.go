// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package params provides the CTIDH degree tables and batch partitions.
//
// A Set is immutable once constructed. Every constructor validates the set
// and refuses to return a malformed one.
package params

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"math/big"
)

// ErrInvalidParameters is wrapped by every validation failure.
var ErrInvalidParameters = errors.New("params: invalid parameters")

// primalityRounds is the Miller-Rabin round count for p.
const primalityRounds = 32

// Set is a prime p = 4*L[0]*...*L[n-1] - 1 together with its degree table L
// and a partition of [0, n) into contiguous batches.
type Set struct {
	name   string
	p      *big.Int
	l      []uint64
	start  []int
	stop   []int
	budget uint64

	maxDegree []uint64
}

// New validates and returns a parameter set. The slices are copied. budget
// records the padding budget the partition was built with and may be zero.
func New(name string, p *big.Int, l []uint64, start, stop []int, budget uint64) (*Set, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: missing prime", ErrInvalidParameters)
	}
	s := &Set{
		name:   name,
		p:      new(big.Int).Set(p),
		l:      append([]uint64(nil), l...),
		start:  append([]int(nil), start...),
		stop:   append([]int(nil), stop...),
		budget: budget,
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	s.buildTables()
	return s, nil
}

// NewPartitioned is New with the partition computed by Partition.
func NewPartitioned(name string, p *big.Int, l []uint64, budget uint64) (*Set, error) {
	start, stop := Partition(l, budget)
	return New(name, p, l, start, stop, budget)
}

func mustNew(name string, hexPrime string, l []uint64, start, stop []int, budget uint64) *Set {
	p, ok := new(big.Int).SetString(hexPrime, 16)
	if !ok {
		panic("params: BUG: bad prime literal for " + name)
	}
	s, err := New(name, p, l, start, stop, budget)
	if err != nil {
		panic(fmt.Sprintf("params: BUG: %s: %v", name, err))
	}
	return s
}

func (s *Set) validate() error {
	n := len(s.l)
	if n == 0 {
		return fmt.Errorf("%w: empty degree table", ErrInvalidParameters)
	}
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: degree table too large", ErrInvalidParameters)
	}

	prod := big.NewInt(4)
	for i, l := range s.l {
		if l < 3 || l%2 == 0 {
			return fmt.Errorf("%w: L[%d] = %d is not an odd prime", ErrInvalidParameters, i, l)
		}
		if !new(big.Int).SetUint64(l).ProbablyPrime(primalityRounds) {
			return fmt.Errorf("%w: L[%d] = %d is not prime", ErrInvalidParameters, i, l)
		}
		if i > 0 && l <= s.l[i-1] {
			return fmt.Errorf("%w: L is not strictly increasing at index %d", ErrInvalidParameters, i)
		}
		prod.Mul(prod, new(big.Int).SetUint64(l))
	}
	if prod.Sub(prod, big.NewInt(1)).Cmp(s.p) != 0 {
		return fmt.Errorf("%w: p != 4*prod(L) - 1", ErrInvalidParameters)
	}
	if !s.p.ProbablyPrime(primalityRounds) {
		return fmt.Errorf("%w: p is not prime", ErrInvalidParameters)
	}

	if len(s.start) == 0 || len(s.start) != len(s.stop) {
		return fmt.Errorf("%w: batch start/stop length mismatch (%d, %d)", ErrInvalidParameters, len(s.start), len(s.stop))
	}
	next := 0
	for b := range s.start {
		if s.start[b] != next {
			return fmt.Errorf("%w: batch %d starts at %d, want %d", ErrInvalidParameters, b, s.start[b], next)
		}
		if s.stop[b] <= s.start[b] {
			return fmt.Errorf("%w: batch %d is empty", ErrInvalidParameters, b)
		}
		next = s.stop[b]
	}
	if next != n {
		return fmt.Errorf("%w: batches cover [0, %d), want [0, %d)", ErrInvalidParameters, next, n)
	}
	return nil
}

func (s *Set) buildTables() {
	s.maxDegree = make([]uint64, len(s.l))
	for b := range s.start {
		// L is increasing, so the last degree of a batch is its maximum.
		top := s.l[s.stop[b]-1]
		for i := s.start[b]; i < s.stop[b]; i++ {
			s.maxDegree[i] = top
		}
	}
}

// Name returns the name of the set.
func (s *Set) Name() string {
	return s.name
}

// Prime returns a copy of p.
func (s *Set) Prime() *big.Int {
	return new(big.Int).Set(s.p)
}

// Budget returns the padding budget the partition was built with.
func (s *Set) Budget() uint64 {
	return s.budget
}

// NumDegrees returns n, the length of L.
func (s *Set) NumDegrees() int {
	return len(s.l)
}

// Degrees returns a copy of L.
func (s *Set) Degrees() []uint64 {
	return append([]uint64(nil), s.l...)
}

// Degree returns L[i].
func (s *Set) Degree(i int) uint64 {
	return s.l[i]
}

// NumBatches returns the number of batches.
func (s *Set) NumBatches() int {
	return len(s.start)
}

// Batch returns the index range [start, stop) of batch b.
func (s *Set) Batch(b int) (start, stop int) {
	return s.start[b], s.stop[b]
}

// BatchMaxDegree returns the largest degree in the batch of index i. This is
// the padded degree l_fake. Not constant time.
func (s *Set) BatchMaxDegree(i int) uint64 {
	return s.maxDegree[i]
}

// Waste returns sum((BatchMaxDegree(b) - L[j]) / 2) over batch b.
func (s *Set) Waste(b int) uint64 {
	var w uint64
	top := s.l[s.stop[b]-1]
	for j := s.start[b]; j < s.stop[b]; j++ {
		w += (top - s.l[j]) / 2
	}
	return w
}

// Lookup returns L[index] and BatchMaxDegree(index) by scanning the whole
// table, so that neither timing nor memory access depends on index. An
// index outside [0, n) panics.
func (s *Set) Lookup(index int) (l, lFake uint64) {
	if index < 0 || index >= len(s.l) {
		panic("params: degree index out of range")
	}
	for j := range s.l {
		mask := -uint64(subtle.ConstantTimeEq(int32(j), int32(index)))
		l |= mask & s.l[j]
		lFake |= mask & s.maxDegree[j]
	}
	return l, lFake
}

// Partition splits L into contiguous batches, starting a new batch as soon
// as padding every member of the current one up to its largest degree
// would waste more than budget half-degree steps in total. L must be
// increasing.
func Partition(l []uint64, budget uint64) (start, stop []int) {
	if len(l) == 0 {
		return nil, nil
	}
	s := 0
	for i := 1; i < len(l); i++ {
		var waste uint64
		for j := s; j <= i; j++ {
			waste += (l[i] - l[j]) / 2
		}
		if waste > budget {
			start = append(start, s)
			stop = append(stop, i)
			s = i
		}
	}
	start = append(start, s)
	stop = append(stop, len(l))
	return start, stop
}
