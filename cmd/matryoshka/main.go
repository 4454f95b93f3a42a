// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/katzenpost/matryoshka/common"
	"github.com/katzenpost/matryoshka/config"
	"github.com/katzenpost/matryoshka/core/log"
	"github.com/katzenpost/matryoshka/core/params"
	"github.com/katzenpost/matryoshka/internal/audit"
	"github.com/katzenpost/matryoshka/internal/instrument"
)

const shutdownTimeout = 5 * time.Second

// auditFlags holds the audit command line overrides.
type auditFlags struct {
	ConfigFile string
	Seed       string
	Backend    string
	ReportFile string
	Serve      bool
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matryoshka",
		Short: "CTIDH matryoshka isogeny audit tool",
		Long: `Audits the constant operation count of batched traditional Vélu isogenies.

Every degree of a batch must cost the same number of field additions,
multiplications, squarings and exponentiations, and no isogeny may invert.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(newAuditCommand(), newParamsCommand())
	return cmd
}

func newAuditCommand() *cobra.Command {
	var flags auditFlags

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run the constant operation count audit",
		Example: `  # Audit the toy parameter set with defaults
  matryoshka audit

  # Reproducible audit with a CBOR report
  matryoshka audit -c audit.toml --seed ci --report audit.cbor

  # Keep /metrics up after the audit until interrupted
  matryoshka audit -c audit.toml --serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAudit(ctx, cfg, flags.Serve)
		},
	}

	cmd.Flags().StringVarP(&flags.ConfigFile, "config", "c", "", "configuration file")
	cmd.Flags().StringVar(&flags.Seed, "seed", "", "seed label for a reproducible audit")
	cmd.Flags().StringVar(&flags.Backend, "backend", "", "field backend (fp, vartime)")
	cmd.Flags().StringVar(&flags.ReportFile, "report", "", "write the CBOR report to this file")
	cmd.Flags().BoolVar(&flags.Serve, "serve", false, "enable metrics and keep serving them after the audit until interrupted")
	return cmd
}

func loadConfig(flags auditFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.ConfigFile == "" {
		cfg, err = config.Load([]byte{})
	} else {
		cfg, err = config.LoadFile(flags.ConfigFile)
		if err != nil {
			err = fmt.Errorf("failed to load config file '%v': %w", flags.ConfigFile, err)
		}
	}
	if err != nil {
		return nil, err
	}

	if flags.Seed != "" {
		cfg.Audit.Seed = flags.Seed
	}
	if flags.Backend != "" {
		cfg.Audit.Backend = flags.Backend
	}
	if flags.ReportFile != "" {
		cfg.Audit.ReportFile = flags.ReportFile
	}
	if flags.Serve {
		cfg.Metrics.Enable = true
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAudit(ctx context.Context, cfg *config.Config, serve bool) error {
	backend, err := log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return err
	}
	defer backend.Close()
	logger := backend.GetLogger("matryoshka")

	set, err := cfg.Parameters.Set()
	if err != nil {
		return err
	}

	serving := false
	if cfg.Metrics.Enable {
		srv := instrument.StartPrometheusListener(cfg.Metrics.Address, backend.GetLogger("metrics"))
		if srv != nil {
			serving = serve
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}()
		}
	}

	auditor, err := audit.New(cfg.Audit, set, backend.GetLogger("audit"))
	if err != nil {
		return err
	}
	r, err := auditor.Run()
	if r != nil && cfg.Audit.ReportFile != "" {
		if werr := r.WriteFile(cfg.Audit.ReportFile); werr != nil {
			return errors.Join(err, werr)
		}
		logger.Noticef("report written to %s", cfg.Audit.ReportFile)
	}
	if serving {
		logger.Noticef("audit finished, serving metrics on %s until interrupted", cfg.Metrics.Address)
		<-ctx.Done()
	}
	return err
}

func newParamsCommand() *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "params [name]",
		Short: "List parameter sets or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range params.Names() {
					s, _ := params.ByName(name)
					fmt.Fprintf(w, "%-6s %4d bits, %3d degrees, %2d batches\n", name, s.Prime().BitLen(), s.NumDegrees(), s.NumBatches())
				}
				return nil
			}
			s, err := params.ByName(args[0])
			if err != nil {
				return err
			}
			if asTOML {
				return toml.NewEncoder(w).Encode(s.File())
			}
			describe(w, s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print the set as a loadable TOML parameter file")
	return cmd
}

func describe(w io.Writer, s *params.Set) {
	fmt.Fprintf(w, "%s: p = 0x%x (%d bits), budget %d\n", s.Name(), s.Prime(), s.Prime().BitLen(), s.Budget())
	for b := 0; b < s.NumBatches(); b++ {
		start, stop := s.Batch(b)
		fmt.Fprintf(w, "batch %2d: %v waste %d\n", b, s.Degrees()[start:stop], s.Waste(b))
	}
}

func main() {
	common.ExecuteWithFang(newRootCommand())
}
