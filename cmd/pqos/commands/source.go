// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/pqos/cmd/pqos/cli"
	"github.com/bureau-foundation/pqos/lib/capability"
	"github.com/bureau-foundation/pqos/lib/config"
	"github.com/bureau-foundation/pqos/lib/hwinfo"
	"github.com/bureau-foundation/pqos/lib/qoserr"
	"github.com/bureau-foundation/pqos/lib/snapshot"
	"github.com/bureau-foundation/pqos/lib/topology"
	"github.com/bureau-foundation/pqos/lib/version"
)

// sourceParams selects where topology and capabilities come from.
// Embedded by every command that queries them.
type sourceParams struct {
	cli.JSONOutput
	ConfigPath   string `json:"config"    flag:"config"    desc:"configuration file (default: $PQOS_CONFIG)"`
	SnapshotPath string `json:"snapshot"  flag:"snapshot"  desc:"read topology and capabilities from a snapshot file instead of probing"`
	LogLevel     string `json:"log_level" flag:"log-level" desc:"log level: debug, info, warn or error (overrides the config file)"`
}

// session is the loaded state a command queries.
type session struct {
	config   *config.Config
	logger   *slog.Logger
	topology *topology.Topology
	registry *capability.Registry

	// source is the snapshot path, or "" for a live probe.
	source string
}

// loadConfig resolves configuration: --config, then PQOS_CONFIG, then
// built-in defaults. Flags override file values.
func (p *sourceParams) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if p.ConfigPath != "" {
		cfg, err = config.LoadFile(p.ConfigPath)
	} else {
		cfg, err = config.Load()
		if errors.Is(err, config.ErrNotConfigured) {
			cfg, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if p.SnapshotPath != "" {
		cfg.Snapshot.Path = p.SnapshotPath
	}
	if p.LogLevel != "" {
		cfg.Log.Level = p.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Output.Format == "json" {
		p.SetJSONOutput(true)
	}
	return cfg, nil
}

// open loads configuration, builds the command logger and obtains the
// topology and registry from a snapshot or a live probe.
func (p *sourceParams) open(command string) (*session, error) {
	cfg, err := p.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := cli.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := cli.NewCommandLogger(level).With("command", command)

	current := &session{config: cfg, logger: logger, source: cfg.Snapshot.Path}
	if current.source != "" {
		loaded, err := snapshot.ReadFile(current.source, cfg.Snapshot.MaxCores)
		if err != nil {
			return nil, err
		}
		if !version.Compatible(loaded.Producer) {
			logger.Warn("snapshot written by an incompatible pqos version",
				"path", current.source, "producer", loaded.Producer, "running", version.Short())
		}
		logger.Debug("loaded snapshot", "path", current.source, "fingerprint", loaded.Fingerprint)
		current.topology = loaded.Topology()
		current.registry = loaded.Registry()
		return current, nil
	}

	roots := hwinfo.Roots{Sys: cfg.Paths.Sysfs, Proc: cfg.Paths.Procfs, Resctrl: cfg.Paths.Resctrl}
	current.topology, current.registry, err = hwinfo.Probe(roots, logger)
	if err != nil {
		return nil, err
	}
	return current, nil
}

// querier returns the scanning topology, or an Index over it when
// indexed is set. Both answer identically.
func (s *session) querier(indexed bool) (topology.Querier, error) {
	if !indexed {
		return s.topology, nil
	}
	index, err := topology.NewIndex(s.topology)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("built topology index", "cores", s.topology.Len())
	return index, nil
}

// absentResult is the JSON form of a negative answer.
type absentResult struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// reportAbsent turns a not-found or not-supported error into a printed
// result and exit code 1. Other errors pass through unchanged.
func (p *sourceParams) reportAbsent(err error) error {
	kind := qoserr.KindOf(err)
	if kind != qoserr.ErrNotFound && kind != qoserr.ErrNotSupported {
		return err
	}

	if done, writeErr := p.EmitJSON(absentResult{Error: err.Error(), Kind: kind.Error()}); done {
		if writeErr != nil {
			return writeErr
		}
	} else {
		fmt.Fprintln(cli.Stdout, err)
	}
	return &cli.ExitError{Code: 1}
}
