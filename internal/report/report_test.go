// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package report

import (
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/katzenpost/matryoshka/core/opcount"
	"github.com/katzenpost/matryoshka/core/params"
)

func TestReport(t *testing.T) {
	require := require.New(t)

	r, err := New(params.P103, "fp", []byte("seed"))
	require.NoError(err)
	require.True(r.Passed())
	require.Equal("p103", r.Set)

	counts := opcount.Counts{Add: 100, Mul: 200, Sqr: 30, Pow: 2}
	r.Add(Entry{Batch: 1, Index: 6, Degree: 19, Padded: 23, PushCount: 2, Counts: counts})
	require.True(r.Passed())

	path := filepath.Join(t.TempDir(), "audit.cbor")
	require.NoError(r.WriteFile(path))
	got, err := ReadFile(path)
	require.NoError(err)
	require.Equal(r.Entries, got.Entries)
	require.Equal("fp", got.Backend)

	s, err := got.ParameterSet()
	require.NoError(err)
	require.Equal(params.P103.File(), s.File())

	r.AddMismatch(Mismatch{Batch: 1, Index: 7, Expected: counts, Got: opcount.Counts{Add: 101}})
	require.False(r.Passed())

	inverted, err := New(params.P512, "vartime", nil)
	require.NoError(err)
	inverted.Add(Entry{Counts: opcount.Counts{Inv: 1}})
	require.False(inverted.Passed())

	require.Error(r.WriteFile(""))
}

func TestUnmarshalRejectsOtherVersions(t *testing.T) {
	b, err := cbor.Marshal(&Report{Version: Version + 1})
	require.NoError(t, err)
	_, err = Unmarshal(b)
	require.Error(t, err)

	_, err = Unmarshal([]byte{0xff})
	require.Error(t, err)
}

func TestParameterSetRejectsDamage(t *testing.T) {
	require := require.New(t)

	r, err := New(params.P512, "fp", nil)
	require.NoError(err)
	r.Params = r.Params[:len(r.Params)/2]
	_, err = r.ParameterSet()
	require.Error(err)

	r.Params = nil
	_, err = r.ParameterSet()
	require.Error(err)
}
