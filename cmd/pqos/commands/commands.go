// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/pqos/cmd/pqos/cli"
	"github.com/bureau-foundation/pqos/lib/version"
)

// Root returns the pqos command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "pqos",
		Summary: "CPU topology and platform QoS capability queries",
		Description: `Query the CPU topology (sockets, L2 and L3 cache clusters) and the
platform QoS capabilities (cache monitoring, cache allocation and
memory bandwidth allocation) of this machine or of a saved snapshot.

Configuration is read from --config, then $PQOS_CONFIG, then built-in
defaults that probe /sys, /proc and /sys/fs/resctrl.`,
		Subcommands: []*cli.Command{
			topologyCommand(),
			capabilityCommand(),
			snapshotCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Fprintln(cli.Stdout, "pqos "+version.Full())
			return nil
		},
	}
}
