// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/pqos/cmd/pqos/cli"
	"github.com/bureau-foundation/pqos/lib/codec"
	"github.com/bureau-foundation/pqos/lib/snapshot"
)

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Summary: "Save and inspect topology snapshots",
		Description: `Save the probed topology and capabilities to a file, or inspect
a saved file.

The encoding follows the file extension: .cbor, .json (comments
allowed on read), .yaml or .yml, optionally followed by .zst or .lz4
for compression. Any command that queries topology or capabilities
accepts --snapshot to answer from a saved file instead of probing.`,
		Subcommands: []*cli.Command{
			snapshotSaveCommand(),
			snapshotShowCommand(),
			snapshotDiagCommand(),
		},
	}
}

type saveParams struct {
	sourceParams
	Output string `json:"output" flag:"output" desc:"snapshot file to write"`
}

type saveResult struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	Cores       int    `json:"cores"`
}

func snapshotSaveCommand() *cli.Command {
	var params saveParams

	return &cli.Command{
		Name:    "save",
		Summary: "Write the topology and capabilities to a file",
		Examples: []cli.Example{
			{Description: "Save a compressed CBOR snapshot", Command: "pqos snapshot save --output host.cbor.zst"},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			if params.Output == "" {
				return fmt.Errorf("--output is required")
			}
			if _, _, err := snapshot.FormatForPath(params.Output); err != nil {
				return err
			}
			current, err := params.open("snapshot/save")
			if err != nil {
				return err
			}

			captured, err := snapshot.New(current.topology, current.registry)
			if err != nil {
				return err
			}
			if err := snapshot.WriteFile(params.Output, captured); err != nil {
				return err
			}
			current.logger.Info("snapshot written",
				"path", params.Output,
				"cores", len(captured.Cores),
				"capabilities", len(captured.Capabilities),
				"fingerprint", captured.Fingerprint,
			)

			result := saveResult{Path: params.Output, Fingerprint: captured.Fingerprint, Cores: len(captured.Cores)}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Fprintf(cli.Stdout, "wrote %s %s\n", params.Output, cli.Muted(captured.Fingerprint))
			return nil
		},
	}
}

type showParams struct {
	cli.JSONOutput
	MaxElements int `json:"max_elements" flag:"max-elements" desc:"largest core, capability or event count accepted" default:"16384"`
}

func snapshotShowCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Verify a snapshot file and summarize its contents",
		Usage:   "pqos snapshot show [flags] <path>",
		Params:  func() any { return &params },
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one snapshot path, got %d arguments", len(args))
			}
			loaded, err := snapshot.ReadFile(args[0], params.MaxElements)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(loaded); done {
				return err
			}

			summary, err := loaded.Topology().Summary()
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.Stdout, cli.Heading(args[0]))
			fmt.Fprintf(cli.Stdout, "  producer      %s\n", loaded.Producer)
			fmt.Fprintf(cli.Stdout, "  fingerprint   %s\n", loaded.Fingerprint)
			fmt.Fprintf(cli.Stdout, "  cores         %d\n", summary.Cores)
			fmt.Fprintf(cli.Stdout, "  sockets       %d\n", summary.Sockets)
			fmt.Fprintf(cli.Stdout, "  l2 clusters   %d\n", summary.L2Clusters)
			fmt.Fprintf(cli.Stdout, "  l3 clusters   %d\n", summary.L3Clusters)
			for _, item := range loaded.Registry().Capabilities {
				fmt.Fprintf(cli.Stdout, "  capability    %s\n", item.Kind())
			}
			return nil
		},
	}
}

func snapshotDiagCommand() *cli.Command {
	return &cli.Command{
		Name:    "diag",
		Summary: "Print a CBOR snapshot in diagnostic notation",
		Description: `Print the raw contents of a CBOR snapshot in CBOR diagnostic
notation, without verifying the fingerprint. Useful for inspecting a
file that "snapshot show" rejects.`,
		Usage: "pqos snapshot diag <path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one snapshot path, got %d arguments", len(args))
			}
			data, format, err := snapshot.ReadRaw(args[0])
			if err != nil {
				return err
			}
			if format != snapshot.FormatCBOR {
				return fmt.Errorf("%s is a %s snapshot; diag only reads CBOR", args[0], format)
			}
			diagnostic, err := codec.Diagnose(data)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}
			fmt.Fprintln(cli.Stdout, diagnostic)
			return nil
		},
	}
}
