// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/bureau-foundation/pqos/cmd/pqos/cli"
	"github.com/bureau-foundation/pqos/lib/capability"
)

func capabilityCommand() *cli.Command {
	return &cli.Command{
		Name:    "cap",
		Summary: "Query platform QoS capabilities",
		Description: `Query the monitoring, cache allocation and memory bandwidth
allocation capabilities of the platform.

A capability the platform lacks is reported as not supported and the
command exits 1.`,
		Subcommands: []*cli.Command{
			capabilityListCommand(),
			capabilityClassesCommand(),
			capabilityCDPCommand(),
			capabilityEventCommand(),
		},
	}
}

// capabilityEntry is the JSON form of one capability.
type capabilityEntry struct {
	Kind    capability.Kind       `json:"kind"`
	Details capability.Capability `json:"details"`
}

func capabilityListCommand() *cli.Command {
	var params sourceParams

	return &cli.Command{
		Name:    "list",
		Summary: "List every capability the platform offers",
		Params:  func() any { return &params },
		Run: func(args []string) error {
			current, err := params.open("cap/list")
			if err != nil {
				return err
			}

			entries := make([]capabilityEntry, 0, len(current.registry.Capabilities))
			for _, item := range current.registry.Capabilities {
				entries = append(entries, capabilityEntry{Kind: item.Kind(), Details: item})
			}
			if done, err := params.EmitJSON(entries); done {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cli.Stdout, cli.Muted("no QoS capabilities"))
				return nil
			}
			for position, entry := range entries {
				if position > 0 {
					fmt.Fprintln(cli.Stdout)
				}
				fmt.Fprintln(cli.Stdout, cli.Heading(entry.Kind.String()))
				if err := printCapability(entry.Details); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printCapability(item capability.Capability) error {
	writer := tabwriter.NewWriter(cli.Stdout, 2, 0, 2, ' ', 0)
	switch typed := item.(type) {
	case *capability.Monitoring:
		fmt.Fprintf(writer, "  max rmid\t%d\n", typed.MaxRMID)
		fmt.Fprintf(writer, "  l3 size\t%d\n", typed.L3Size)
		for _, event := range typed.Events {
			fmt.Fprintf(writer, "  event\t%s\n", event.Kind)
		}
	case *capability.L3CacheAllocation:
		printCacheAllocation(writer, &typed.CacheAllocation)
	case *capability.L2CacheAllocation:
		printCacheAllocation(writer, &typed.CacheAllocation)
	case *capability.MemoryBandwidthAllocation:
		fmt.Fprintf(writer, "  classes\t%d\n", typed.NumClasses)
		fmt.Fprintf(writer, "  throttle max\t%d\n", typed.ThrottleMax)
		fmt.Fprintf(writer, "  throttle step\t%d\n", typed.ThrottleStep)
		fmt.Fprintf(writer, "  linear\t%t\n", typed.Linear)
	}
	return writer.Flush()
}

func printCacheAllocation(writer *tabwriter.Writer, allocation *capability.CacheAllocation) {
	fmt.Fprintf(writer, "  classes\t%d\n", allocation.NumClasses)
	fmt.Fprintf(writer, "  ways\t%d\n", allocation.NumWays)
	if allocation.WaySize > 0 {
		fmt.Fprintf(writer, "  way size\t%d\n", allocation.WaySize)
	}
	if allocation.WayContention != 0 {
		fmt.Fprintf(writer, "  way contention\t%#x\n", allocation.WayContention)
	}
	fmt.Fprintf(writer, "  cdp\tcapable=%t enabled=%t\n", allocation.CDPCapable, allocation.CDPEnabled)
}

type kindParams struct {
	sourceParams
	Kind string `json:"kind" flag:"kind" desc:"capability kind: l3ca, l2ca or mba" default:"l3ca"`
}

type classesResult struct {
	Kind    capability.Kind `json:"kind"`
	Classes uint32          `json:"classes"`
}

func capabilityClassesCommand() *cli.Command {
	var params kindParams

	return &cli.Command{
		Name:    "classes",
		Summary: "Show the number of classes of service of an allocation capability",
		Examples: []cli.Example{
			{Description: "Classes of service for memory bandwidth allocation", Command: "pqos cap classes --kind mba"},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			kind, err := capability.ParseKind(params.Kind)
			if err != nil {
				return err
			}
			current, err := params.open("cap/classes")
			if err != nil {
				return err
			}

			classes, err := current.registry.ClassCount(kind)
			if err != nil {
				return params.reportAbsent(err)
			}
			if done, err := params.EmitJSON(classesResult{Kind: kind, Classes: classes}); done {
				return err
			}
			fmt.Fprintf(cli.Stdout, "%s %d\n", cli.Heading(kind.String()), classes)
			return nil
		},
	}
}

type cdpResult struct {
	Kind capability.Kind `json:"kind"`
	capability.CDPState
}

func capabilityCDPCommand() *cli.Command {
	var params kindParams

	return &cli.Command{
		Name:    "cdp",
		Summary: "Show code/data prioritization status of a cache allocation capability",
		Params:  func() any { return &params },
		Run: func(args []string) error {
			kind, err := capability.ParseKind(params.Kind)
			if err != nil {
				return err
			}
			current, err := params.open("cap/cdp")
			if err != nil {
				return err
			}

			state, err := current.registry.CDP(kind)
			if err != nil {
				return params.reportAbsent(err)
			}
			if done, err := params.EmitJSON(cdpResult{Kind: kind, CDPState: state}); done {
				return err
			}
			fmt.Fprintf(cli.Stdout, "%s capable=%t enabled=%t\n", cli.Heading(kind.String()), state.Capable, state.Enabled)
			return nil
		},
	}
}

type eventParams struct {
	sourceParams
	Event string `json:"event" flag:"event" desc:"event name, e.g. llc_occupancy or mbm_local_bytes" default:"llc_occupancy"`
}

func capabilityEventCommand() *cli.Command {
	var params eventParams

	return &cli.Command{
		Name:    "event",
		Summary: "Show the descriptor of a monitoring event",
		Examples: []cli.Example{
			{Description: "Check for local memory bandwidth monitoring", Command: "pqos cap event --event mbm_local_bytes"},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			kind, err := capability.ParseEventKind(params.Event)
			if err != nil {
				return err
			}
			current, err := params.open("cap/event")
			if err != nil {
				return err
			}

			event, err := current.registry.MonitoringEvent(kind)
			if err != nil {
				return params.reportAbsent(err)
			}
			if done, err := params.EmitJSON(event); done {
				return err
			}
			fmt.Fprintln(cli.Stdout, cli.Heading(event.Kind.String()))
			writer := tabwriter.NewWriter(cli.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "  max rmid\t%d\n", event.MaxRMID)
			fmt.Fprintf(writer, "  scale factor\t%d\n", event.ScaleFactor)
			fmt.Fprintf(writer, "  counter length\t%d\n", event.CounterLength)
			return writer.Flush()
		},
	}
}
