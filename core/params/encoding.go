// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package params

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
)

// File is the on-disk form of a Set. An empty batch table with a non-zero
// Budget is filled in by Partition.
type File struct {
	Name       string   `toml:"Name" cbor:"name"`
	Prime      string   `toml:"Prime" cbor:"prime"`
	Degrees    []uint64 `toml:"Degrees" cbor:"degrees"`
	Budget     uint64   `toml:"Budget" cbor:"budget"`
	BatchStart []int    `toml:"BatchStart" cbor:"batch_start"`
	BatchStop  []int    `toml:"BatchStop" cbor:"batch_stop"`
}

// File returns the on-disk form of s.
func (s *Set) File() *File {
	return &File{
		Name:       s.name,
		Prime:      "0x" + s.p.Text(16),
		Degrees:    s.Degrees(),
		Budget:     s.budget,
		BatchStart: append([]int(nil), s.start...),
		BatchStop:  append([]int(nil), s.stop...),
	}
}

// Set validates f and returns the parameter set it describes.
func (f *File) Set() (*Set, error) {
	p, ok := new(big.Int).SetString(f.Prime, 0)
	if !ok {
		return nil, fmt.Errorf("%w: malformed prime %q", ErrInvalidParameters, f.Prime)
	}
	if len(f.BatchStart) == 0 && len(f.BatchStop) == 0 {
		if f.Budget == 0 {
			return nil, fmt.Errorf("%w: neither a batch table nor a budget is set", ErrInvalidParameters)
		}
		return NewPartitioned(f.Name, p, f.Degrees, f.Budget)
	}
	return New(f.Name, p, f.Degrees, f.BatchStart, f.BatchStop, f.Budget)
}

// Load parses and validates a TOML parameter set.
func Load(b []byte) (*Set, error) {
	if b == nil {
		return nil, errors.New("params: no nil buffer as parameter file")
	}
	f := new(File)
	md, err := toml.Decode(string(b), f)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("params: Undecoded keys in parameter file: %v", undecoded)
	}
	return f.Set()
}

// LoadFile loads, parses and validates a TOML parameter set file.
func LoadFile(path string) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// MarshalBinary encodes s as CBOR.
func (s *Set) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(s.File())
}

// UnmarshalBinary decodes and validates a CBOR encoded set.
func UnmarshalBinary(b []byte) (*Set, error) {
	f := new(File)
	if err := cbor.Unmarshal(b, f); err != nil {
		return nil, err
	}
	return f.Set()
}
