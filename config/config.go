// config.go - Matryoshka audit tool configuration.
// Copyright (C) 2017  Yawning Angel.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config provides the matryoshka audit tool configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/katzenpost/matryoshka/core/isogeny"
	"github.com/katzenpost/matryoshka/core/params"
)

const (
	defaultLogLevel        = "NOTICE"
	defaultParameterSet    = "p103"
	defaultWalks           = 2
	defaultIndicesPerBatch = 3
	defaultMetricsAddress  = "127.0.0.1:6543"

	// BackendConstantTime is the constant-time limb field.
	BackendConstantTime = "fp"
	// BackendVartime is the math/big field, for cross-checks.
	BackendVartime = "vartime"
)

var defaultLogging = Logging{
	Disable: false,
	File:    "",
	Level:   defaultLogLevel,
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stdout will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (lCfg *Logging) validate() error {
	lvl := strings.ToUpper(lCfg.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", lCfg.Level)
	}
	lCfg.Level = lvl // Force uppercase.
	return nil
}

// Parameters selects the parameter set, either built in by Name or loaded
// from a TOML File.
type Parameters struct {
	Name string
	File string
}

func (pCfg *Parameters) validate() error {
	if pCfg.Name != "" && pCfg.File != "" {
		return errors.New("config: Parameters: Name and File are mutually exclusive")
	}
	if pCfg.Name == "" && pCfg.File == "" {
		pCfg.Name = defaultParameterSet
	}
	if pCfg.Name != "" {
		if _, err := params.ByName(pCfg.Name); err != nil {
			return fmt.Errorf("config: Parameters: %w", err)
		}
	}
	return nil
}

// Set returns the configured parameter set.
func (pCfg *Parameters) Set() (*params.Set, error) {
	if pCfg.File != "" {
		s, err := params.LoadFile(pCfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load parameter file: %w", err)
		}
		return s, nil
	}
	return params.ByName(pCfg.Name)
}

// Audit describes the constant operation count audit.
type Audit struct {
	// Backend is the field implementation, "fp" or "vartime".
	Backend string

	// Walks is the number of curves visited, starting from a = 0 and
	// moving to a codomain after each walk.
	Walks int

	// IndicesPerBatch is the number of degrees sampled from every batch.
	IndicesPerBatch int

	// Batches restricts the audit to these batches. Empty means all.
	Batches []int

	// PushCounts are the numbers of pushed points, cycled across walks.
	// Empty means 0, 1 and 2.
	PushCounts []int

	// Seed makes the audit reproducible. Empty draws fresh entropy.
	Seed string

	// ReportFile, if set, receives the CBOR audit report.
	ReportFile string
}

func (aCfg *Audit) applyDefaults() {
	if aCfg.Backend == "" {
		aCfg.Backend = BackendConstantTime
	}
	if aCfg.Walks == 0 {
		aCfg.Walks = defaultWalks
	}
	if aCfg.IndicesPerBatch == 0 {
		aCfg.IndicesPerBatch = defaultIndicesPerBatch
	}
	if len(aCfg.PushCounts) == 0 {
		for n := 0; n <= isogeny.MaxPush; n++ {
			aCfg.PushCounts = append(aCfg.PushCounts, n)
		}
	}
}

func (aCfg *Audit) validate() error {
	switch aCfg.Backend {
	case BackendConstantTime, BackendVartime:
	default:
		return fmt.Errorf("config: Audit: Backend '%v' is invalid", aCfg.Backend)
	}
	if aCfg.Walks < 0 {
		return fmt.Errorf("config: Audit: Walks %d is invalid", aCfg.Walks)
	}
	if aCfg.IndicesPerBatch < 2 {
		return fmt.Errorf("config: Audit: IndicesPerBatch must be at least 2 to compare counts, got %d", aCfg.IndicesPerBatch)
	}
	for _, n := range aCfg.PushCounts {
		if n < 0 || n > isogeny.MaxPush {
			return fmt.Errorf("config: Audit: PushCount %d is outside [0, %d]", n, isogeny.MaxPush)
		}
	}
	for _, b := range aCfg.Batches {
		if b < 0 {
			return fmt.Errorf("config: Audit: batch %d is invalid", b)
		}
	}
	return nil
}

// Metrics configures the Prometheus listener.
//
// The listener lives as long as the audit does. Pass --serve to the audit
// command to keep /metrics up afterwards until the process is interrupted.
type Metrics struct {
	// Enable starts the listener.
	Enable bool

	// Address is the host:port /metrics is served on.
	Address string
}

func (mCfg *Metrics) applyDefaults() {
	if mCfg.Address == "" {
		mCfg.Address = defaultMetricsAddress
	}
}

// Config is the top level audit tool configuration.
type Config struct {
	Logging    *Logging
	Parameters *Parameters
	Audit      *Audit
	Metrics    *Metrics
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration sections.
func (cfg *Config) FixupAndValidate() error {
	if cfg.Logging == nil {
		l := defaultLogging
		cfg.Logging = &l
	}
	if cfg.Parameters == nil {
		cfg.Parameters = &Parameters{}
	}
	if cfg.Audit == nil {
		cfg.Audit = &Audit{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &Metrics{}
	}
	cfg.Audit.applyDefaults()
	cfg.Metrics.applyDefaults()

	if err := cfg.Logging.validate(); err != nil {
		return err
	}
	if err := cfg.Parameters.validate(); err != nil {
		return err
	}
	return cfg.Audit.validate()
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	if b == nil {
		return nil, errors.New("config: No nil buffer as config file")
	}

	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
