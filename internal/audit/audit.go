// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package audit checks that every degree of a batch costs the same field
// operations, and that no isogeny inverts.
package audit

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/katzenpost/hpqc/hash"
	"github.com/katzenpost/hpqc/rand"
	"gopkg.in/op/go-logging.v1"

	"github.com/katzenpost/matryoshka/config"
	"github.com/katzenpost/matryoshka/core/fp"
	"github.com/katzenpost/matryoshka/core/fp/vartime"
	"github.com/katzenpost/matryoshka/core/isogeny"
	"github.com/katzenpost/matryoshka/core/montgomery"
	"github.com/katzenpost/matryoshka/core/opcount"
	"github.com/katzenpost/matryoshka/core/params"
	"github.com/katzenpost/matryoshka/internal/instrument"
	"github.com/katzenpost/matryoshka/internal/report"
)

// ErrFailed is returned by Run when the audit found a mismatch or an
// inversion. The report is still returned.
var ErrFailed = errors.New("audit: constant operation count violated")

const seedSize = 32

// Auditor runs the audit described by a config.Audit block.
type Auditor struct {
	cfg  *config.Audit
	set  *params.Set
	log  *logging.Logger
	seed []byte
	rng  io.Reader
}

// New returns an Auditor. An empty Seed in cfg draws a fresh one, which is
// recorded in the report.
func New(cfg *config.Audit, set *params.Set, log *logging.Logger) (*Auditor, error) {
	for _, b := range cfg.Batches {
		if b >= set.NumBatches() {
			return nil, fmt.Errorf("audit: batch %d out of range, %s has %d batches", b, set.Name(), set.NumBatches())
		}
	}

	var seed []byte
	if cfg.Seed != "" {
		h := hash.Sum256([]byte(cfg.Seed))
		seed = h[:]
	} else {
		seed = make([]byte, seedSize)
		if _, err := io.ReadFull(rand.Reader, seed); err != nil {
			return nil, err
		}
	}
	rng, err := rand.NewDeterministicRandReader(seed)
	if err != nil {
		return nil, err
	}

	return &Auditor{
		cfg:  cfg,
		set:  set,
		log:  log,
		seed: seed,
		rng:  rng,
	}, nil
}

// Run performs the audit with the configured field backend.
func (a *Auditor) Run() (*report.Report, error) {
	counter := opcount.New()
	switch a.cfg.Backend {
	case config.BackendConstantTime:
		f, err := fp.New(a.set.Prime(), counter)
		if err != nil {
			return nil, err
		}
		return run[fp.Element](a, f, counter)
	case config.BackendVartime:
		return run[vartime.Element](a, vartime.New(a.set.Prime(), counter), counter)
	}
	return nil, fmt.Errorf("audit: unknown backend %q", a.cfg.Backend)
}

func (a *Auditor) batches() []int {
	if len(a.cfg.Batches) != 0 {
		return a.cfg.Batches
	}
	all := make([]int, a.set.NumBatches())
	for b := range all {
		all[b] = b
	}
	return all
}

// indices spreads n indices over [start, stop), always including both ends.
func indices(start, stop, n int) []int {
	if stop-start == 1 {
		return []int{start}
	}
	out := make([]int, n)
	for k := range out {
		out[k] = start + k*(stop-1-start)/(n-1)
	}
	return out
}

func (a *Auditor) coin() (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(a.rng, b[:]); err != nil {
		return false, err
	}
	return b[0]&1 == 1, nil
}

func run[E any](a *Auditor, f montgomery.Field[E], counter *opcount.Counter) (*report.Report, error) {
	e, err := isogeny.New(f, a.set)
	if err != nil {
		return nil, err
	}
	c := e.Curve()
	name := a.set.Name()
	r, err := report.New(a.set, a.cfg.Backend, a.seed)
	if err != nil {
		return nil, err
	}

	domain := big.NewInt(0)
	for walk := 0; walk < a.cfg.Walks; walk++ {
		pushCount := a.cfg.PushCounts[walk%len(a.cfg.PushCounts)]
		A := c.FromAffine(domain)
		next := domain
		a.log.Noticef("walk %d: a = %x, push count %d", walk, domain, pushCount)

		for _, b := range a.batches() {
			start, stop := a.set.Batch(b)
			var expected *opcount.Counts
			for _, index := range indices(start, stop, a.cfg.IndicesPerBatch) {
				twist, err := a.coin()
				if err != nil {
					return nil, err
				}
				s, err := e.SampleKernelPoint(A, index, twist, a.rng)
				if err != nil {
					return nil, err
				}
				instrument.SampleAttempts(s.Attempts)

				counter.Reset()
				codomain, _ := e.Matryoshka(A, [isogeny.MaxPush]isogeny.Point[E]{s.Plus, s.Minus}, pushCount, s.Kernel, index)
				got := counter.Snapshot()
				instrument.Audited(name)

				label := fmt.Sprintf("batch %2d, l = %3d", b, a.set.Degree(index))
				a.log.Info(got.Runtime(label))
				a.log.Debug(got.PowInv(label))

				next = c.Affine(codomain)
				r.Add(report.Entry{
					Walk:      walk,
					Batch:     b,
					Index:     index,
					Degree:    a.set.Degree(index),
					Padded:    a.set.BatchMaxDegree(index),
					Twist:     twist,
					PushCount: pushCount,
					Attempts:  s.Attempts,
					Domain:    domain.Bytes(),
					Codomain:  next.Bytes(),
					Counts:    got,
				})

				if got.Inv != 0 {
					a.log.Errorf("batch %d index %d inverted %d times", b, index, got.Inv)
				}
				if expected == nil {
					expected = &got
					instrument.BatchOperations(name, b, got)
					continue
				}
				if got != *expected {
					a.log.Errorf("batch %d index %d: counts %+v differ from %+v", b, index, got, *expected)
					instrument.Mismatch(name)
					r.AddMismatch(report.Mismatch{
						Walk:     walk,
						Batch:    b,
						Index:    index,
						Expected: *expected,
						Got:      got,
					})
				}
			}
		}
		domain = next
	}

	if !r.Passed() {
		return r, ErrFailed
	}
	a.log.Noticef("%s: %d isogenies audited, counts are constant per batch", name, len(r.Entries))
	return r, nil
}
