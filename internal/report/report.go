// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

// Package report holds the CBOR encoded result of an operation count audit.
package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/katzenpost/matryoshka/core/opcount"
	"github.com/katzenpost/matryoshka/core/params"
)

// Version is the report format version.
const Version = 1

// Entry is one audited isogeny.
type Entry struct {
	Walk      int    `cbor:"walk"`
	Batch     int    `cbor:"batch"`
	Index     int    `cbor:"index"`
	Degree    uint64 `cbor:"degree"`
	Padded    uint64 `cbor:"padded"`
	Twist     bool   `cbor:"twist"`
	PushCount int    `cbor:"push_count"`
	Attempts  int    `cbor:"attempts"`

	// Domain and Codomain are big-endian affine curve coefficients.
	Domain   []byte `cbor:"domain"`
	Codomain []byte `cbor:"codomain"`

	Counts opcount.Counts `cbor:"counts"`
}

// Mismatch records a batch whose degrees disagreed on operation counts.
type Mismatch struct {
	Walk     int            `cbor:"walk"`
	Batch    int            `cbor:"batch"`
	Index    int            `cbor:"index"`
	Expected opcount.Counts `cbor:"expected"`
	Got      opcount.Counts `cbor:"got"`
}

// Report is a complete audit.
type Report struct {
	Version    int        `cbor:"version"`
	Set        string     `cbor:"set"`
	Backend    string     `cbor:"backend"`
	Seed       []byte     `cbor:"seed"`
	Params     []byte     `cbor:"params"`
	Entries    []Entry    `cbor:"entries"`
	Mismatches []Mismatch `cbor:"mismatches"`
}

// New returns an empty report for an audit of set. The set itself is
// embedded so that the report can be checked without the binary that
// wrote it.
func New(set *params.Set, backend string, seed []byte) (*Report, error) {
	b, err := set.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &Report{
		Version: Version,
		Set:     set.Name(),
		Backend: backend,
		Seed:    seed,
		Params:  b,
	}, nil
}

// ParameterSet decodes and validates the embedded parameter set.
func (r *Report) ParameterSet() (*params.Set, error) {
	s, err := params.UnmarshalBinary(r.Params)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return s, nil
}

// Add appends an audited isogeny.
func (r *Report) Add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// AddMismatch appends a count mismatch.
func (r *Report) AddMismatch(m Mismatch) {
	r.Mismatches = append(r.Mismatches, m)
}

// Passed reports whether every batch had constant counts and no isogeny
// inverted.
func (r *Report) Passed() bool {
	if len(r.Mismatches) != 0 {
		return false
	}
	for _, e := range r.Entries {
		if e.Counts.Inv != 0 {
			return false
		}
	}
	return true
}

// Marshal encodes r as CBOR.
func (r *Report) Marshal() ([]byte, error) {
	return cbor.Marshal(r)
}

// Unmarshal decodes a CBOR report.
func Unmarshal(b []byte) (*Report, error) {
	r := new(Report)
	if err := cbor.Unmarshal(b, r); err != nil {
		return nil, err
	}
	if r.Version != Version {
		return nil, fmt.Errorf("report: unsupported version %d", r.Version)
	}
	return r, nil
}

// WriteFile writes the CBOR report to path.
func (r *Report) WriteFile(path string) error {
	if path == "" {
		return errors.New("report: empty path")
	}
	b, err := r.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

// ReadFile reads a CBOR report from path.
func ReadFile(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(b)
}
