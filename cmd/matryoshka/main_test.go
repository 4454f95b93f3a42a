// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katzenpost/matryoshka/core/params"
	"github.com/katzenpost/matryoshka/internal/report"
)

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParamsCommand(t *testing.T) {
	require := require.New(t)

	out, err := execute(t, "params")
	require.NoError(err)
	require.Contains(out, "p512")
	require.Contains(out, "74 degrees")

	out, err = execute(t, "params", "p103")
	require.NoError(err)
	require.Contains(out, "batch  0: [3 5 7 11 13]")

	dir := t.TempDir()
	out, err = execute(t, "params", "p103", "--toml")
	require.NoError(err)
	path := filepath.Join(dir, "p103.toml")
	require.NoError(os.WriteFile(path, []byte(out), 0600))
	s, err := params.LoadFile(path)
	require.NoError(err)
	require.Equal(params.P103.File(), s.File())

	_, err = execute(t, "params", "p7")
	require.Error(err)
}

func TestAuditCommand(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "audit.toml")
	require.NoError(os.WriteFile(cfgPath, []byte(`
[Logging]
Disable = true

[Audit]
Walks = 1
Batches = [0, 2]
`), 0600))

	reportPath := filepath.Join(dir, "audit.cbor")
	_, err := execute(t, "audit", "-c", cfgPath, "--seed", "cli", "--report", reportPath)
	require.NoError(err)

	r, err := report.ReadFile(reportPath)
	require.NoError(err)
	require.True(r.Passed())
	require.Equal("p103", r.Set)
	require.Len(r.Entries, 6)
	s, err := r.ParameterSet()
	require.NoError(err)
	require.Equal(params.P103.Prime(), s.Prime())

	_, err = execute(t, "audit", "-c", filepath.Join(dir, "missing.toml"))
	require.ErrorContains(err, "failed to load config file")

	_, err = execute(t, "audit", "-c", cfgPath, "--backend", "gmp")
	require.Error(err)
}
