// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/pqos/lib/capability"
	"github.com/bureau-foundation/pqos/lib/qoserr"
	"github.com/bureau-foundation/pqos/lib/topology"
)

// DefaultResctrlRoot is where the kernel's resctrl filesystem is
// conventionally mounted.
const DefaultResctrlRoot = "/sys/fs/resctrl"

// Roots names the pseudo-filesystem mount points a probe reads from.
type Roots struct {
	// Sys is the sysfs mount point (normally /sys).
	Sys string
	// Proc is the procfs mount point (normally /proc).
	Proc string
	// Resctrl is the resctrl mount point (normally /sys/fs/resctrl).
	Resctrl string
}

// DefaultRoots returns the standard Linux mount points.
func DefaultRoots() Roots {
	return Roots{Sys: "/sys", Proc: "/proc", Resctrl: DefaultResctrlRoot}
}

// Probe discovers both the topology and the capability registry. A
// machine without resctrl support is not an error: the registry is
// returned empty, so every capability lookup reports
// qoserr.ErrNotSupported.
func Probe(roots Roots, logger *slog.Logger) (*topology.Topology, *capability.Registry, error) {
	logger = orDiscard(logger)

	topo, err := ProbeTopology(roots, logger)
	if err != nil {
		return nil, nil, err
	}

	registry, err := ProbeCapabilities(roots, logger)
	if errors.Is(err, qoserr.ErrNotSupported) {
		logger.Info("platform QoS not available, continuing without capabilities", "error", err)
		registry = &capability.Registry{}
	} else if err != nil {
		return nil, nil, fmt.Errorf("probing capabilities: %w", err)
	}

	return topo, registry, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
