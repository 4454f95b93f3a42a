// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !noprometheus
// +build !noprometheus

package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katzenpost/matryoshka/internal/report"
)

func freeAddress(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func scrape(addr string) string {
	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(b)
}

func TestAuditServe(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	addr := freeAddress(t)

	cfgPath := filepath.Join(dir, "audit.toml")
	require.NoError(os.WriteFile(cfgPath, []byte(`
[Logging]
Disable = true

[Audit]
Walks = 1
Batches = [0]

[Metrics]
Address = "`+addr+`"
`), 0600))
	reportPath := filepath.Join(dir, "audit.cbor")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"audit", "-c", cfgPath, "--seed", "serve", "--report", reportPath, "--serve"})
	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	// The report is written once the audit is over.
	require.Eventually(func() bool {
		_, err := os.Stat(reportPath)
		return err == nil
	}, time.Minute, 20*time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("audit returned while it should be serving metrics: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	require.Contains(scrape(addr), `matryoshka_batch_field_operations{batch="0",op="mul",set="p103"}`)

	cancel()
	select {
	case err := <-done:
		require.NoError(err)
	case <-time.After(10 * time.Second):
		t.Fatal("audit did not stop after cancellation")
	}
	require.Empty(scrape(addr))

	r, err := report.ReadFile(reportPath)
	require.NoError(err)
	require.True(r.Passed())
}
