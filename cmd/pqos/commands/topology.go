// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/bureau-foundation/pqos/cmd/pqos/cli"
	"github.com/bureau-foundation/pqos/lib/hwinfo"
	"github.com/bureau-foundation/pqos/lib/topology"
)

func topologyCommand() *cli.Command {
	return &cli.Command{
		Name:    "topology",
		Summary: "Query the CPU topology",
		Description: `Query sockets, L2 clusters and L3 clusters of the CPU topology.

The topology is probed from sysfs unless --snapshot (or snapshot.path in
the configuration file) names a snapshot file.`,
		Subcommands: []*cli.Command{
			topologySummaryCommand(),
			topologyGroupsCommand(),
			topologyCoresCommand(),
			topologySocketCoresCommand(),
			topologyCoreCommand(),
		},
	}
}

// bufferParams selects the explicit-capacity query variants.
type bufferParams struct {
	Max     int  `json:"max"   flag:"max"   desc:"result buffer capacity; 0 sizes the buffer to fit"`
	Indexed bool `json:"index" flag:"index" desc:"answer from a prebuilt index instead of scanning"`
}

func topologySummaryCommand() *cli.Command {
	var params sourceParams

	return &cli.Command{
		Name:    "summary",
		Summary: "Count cores, sockets and cache clusters",
		Params:  func() any { return &params },
		Run: func(args []string) error {
			current, err := params.open("topology/summary")
			if err != nil {
				return err
			}
			summary, err := current.topology.Summary()
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(summary); done {
				return err
			}

			fmt.Fprintln(cli.Stdout, cli.Heading("Topology"))
			writer := tabwriter.NewWriter(cli.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "  cores\t%d\n", summary.Cores)
			fmt.Fprintf(writer, "  sockets\t%d\n", summary.Sockets)
			fmt.Fprintf(writer, "  l2 clusters\t%d\n", summary.L2Clusters)
			fmt.Fprintf(writer, "  l3 clusters\t%d\n", summary.L3Clusters)
			writer.Flush()

			sockets := make([]uint32, summary.Sockets)
			if _, err := current.topology.Sockets(sockets); err != nil {
				return err
			}
			fmt.Fprintln(cli.Stdout)
			fmt.Fprintln(cli.Stdout, cli.Heading("Sockets"))
			writer = tabwriter.NewWriter(cli.Stdout, 2, 0, 2, ' ', 0)
			for _, socket := range sockets {
				cores, err := current.topology.CoresInGroup(topology.Socket, socket)
				if err != nil {
					return err
				}
				fmt.Fprintf(writer, "  %d\t%s\n", socket, hwinfo.FormatCPUList(cores))
			}
			return writer.Flush()
		},
	}
}

type groupsParams struct {
	sourceParams
	bufferParams
	Kind string `json:"kind" flag:"kind" desc:"group kind: socket, l2 or l3" default:"socket"`
}

type groupsResult struct {
	Kind   string   `json:"kind"`
	Count  int      `json:"count"`
	Groups []uint32 `json:"groups"`
}

func topologyGroupsCommand() *cli.Command {
	var params groupsParams

	return &cli.Command{
		Name:    "groups",
		Summary: "List distinct socket or cache cluster ids",
		Description: `List the distinct ids of one group kind, in first-occurrence order.

With --max, the ids are written into a buffer of that capacity and the
command fails if they do not fit.`,
		Examples: []cli.Example{
			{Description: "List L3 cluster ids", Command: "pqos topology groups --kind l3"},
			{Description: "Fail unless at most two sockets exist", Command: "pqos topology groups --kind socket --max 2"},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			kind, err := topology.ParseGroupKind(params.Kind)
			if err != nil {
				return err
			}
			current, err := params.open("topology/groups")
			if err != nil {
				return err
			}
			querier, err := current.querier(params.Indexed)
			if err != nil {
				return err
			}

			var groups []uint32
			if params.Max > 0 {
				buffer := make([]uint32, params.Max)
				written, err := querier.FillGroups(kind, buffer)
				if err != nil {
					return err
				}
				groups = buffer[:written]
			} else if groups, err = querier.Groups(kind); err != nil {
				return err
			}

			result := groupsResult{Kind: kind.String(), Count: len(groups), Groups: groups}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Fprintf(cli.Stdout, "%s %s\n", cli.Heading(kind.String()), cli.Muted(fmt.Sprintf("(%d)", len(groups))))
			for _, id := range groups {
				fmt.Fprintf(cli.Stdout, "  %d\n", id)
			}
			return nil
		},
	}
}

type coresParams struct {
	sourceParams
	bufferParams
	Kind  string `json:"kind"  flag:"kind"  desc:"group kind: socket, l2 or l3" default:"l3"`
	Group uint32 `json:"group" flag:"group" desc:"group id"`
}

type coresResult struct {
	Kind  string   `json:"kind"`
	Group uint32   `json:"group"`
	Cores []uint32 `json:"cores"`
}

func topologyCoresCommand() *cli.Command {
	var params coresParams

	return &cli.Command{
		Name:    "cores",
		Summary: "List the cores of a socket or cache cluster",
		Examples: []cli.Example{
			{Description: "Cores sharing L3 cluster 1", Command: "pqos topology cores --kind l3 --group 1"},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			kind, err := topology.ParseGroupKind(params.Kind)
			if err != nil {
				return err
			}
			current, err := params.open("topology/cores")
			if err != nil {
				return err
			}
			querier, err := current.querier(params.Indexed)
			if err != nil {
				return err
			}

			var cores []uint32
			if params.Max > 0 {
				buffer := make([]uint32, params.Max)
				written, fillErr := querier.FillCoresInGroup(kind, params.Group, buffer)
				cores, err = buffer[:written], fillErr
			} else {
				cores, err = querier.CoresInGroup(kind, params.Group)
			}
			if err != nil {
				return params.reportAbsent(err)
			}

			return printCores(&params.sourceParams, coresResult{Kind: kind.String(), Group: params.Group, Cores: cores})
		},
	}
}

type socketCoresParams struct {
	sourceParams
	bufferParams
	Socket uint32 `json:"socket" flag:"socket" desc:"socket id"`
}

func topologySocketCoresCommand() *cli.Command {
	var params socketCoresParams

	return &cli.Command{
		Name:    "socket-cores",
		Summary: "List the cores of a socket into a fixed-size buffer",
		Description: `List the cores of one socket. The result is written into a buffer
of --max entries (default: one per core in the topology). A buffer of
one entry returns the first core found on the socket.`,
		Examples: []cli.Example{
			{Description: "First core on socket 1", Command: "pqos topology socket-cores --socket 1 --max 1"},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			current, err := params.open("topology/socket-cores")
			if err != nil {
				return err
			}
			querier, err := current.querier(params.Indexed)
			if err != nil {
				return err
			}

			capacity := params.Max
			if capacity <= 0 {
				capacity = current.topology.Len()
			}
			buffer := make([]uint32, capacity)
			written, err := querier.CoresOnSocket(params.Socket, buffer)
			if err != nil {
				return params.reportAbsent(err)
			}

			return printCores(&params.sourceParams, coresResult{
				Kind:  topology.Socket.String(),
				Group: params.Socket,
				Cores: buffer[:written],
			})
		},
	}
}

func printCores(params *sourceParams, result coresResult) error {
	if done, err := params.EmitJSON(result); done {
		return err
	}
	fmt.Fprintf(cli.Stdout, "%s %d: %s\n", cli.Heading(result.Kind), result.Group, hwinfo.FormatCPUList(result.Cores))
	return nil
}

type coreParams struct {
	sourceParams
	Core    uint32 `json:"core"  flag:"core"  desc:"logical core id"`
	Indexed bool   `json:"index" flag:"index" desc:"answer from a prebuilt index instead of scanning"`
}

type coreResult struct {
	LogicalID uint32 `json:"logical_id"`
	Socket    uint32 `json:"socket"`
	L3Cluster uint32 `json:"l3_cluster"`
}

func topologyCoreCommand() *cli.Command {
	var params coreParams

	return &cli.Command{
		Name:    "core",
		Summary: "Show the socket and L3 cluster of a core",
		Description: `Check that a logical core exists and show which socket and L3
cluster it belongs to. Exits 1 if the core does not exist.`,
		Params: func() any { return &params },
		Run: func(args []string) error {
			current, err := params.open("topology/core")
			if err != nil {
				return err
			}
			querier, err := current.querier(params.Indexed)
			if err != nil {
				return err
			}

			if err := querier.CoreExists(params.Core); err != nil {
				return params.reportAbsent(err)
			}
			socket, err := querier.SocketOf(params.Core)
			if err != nil {
				return err
			}
			l3, err := querier.L3ClusterOf(params.Core)
			if err != nil {
				return err
			}

			result := coreResult{LogicalID: params.Core, Socket: socket, L3Cluster: l3}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Fprintf(cli.Stdout, "%s %d\n", cli.Heading("core"), result.LogicalID)
			fmt.Fprintf(cli.Stdout, "  socket      %d\n", result.Socket)
			fmt.Fprintf(cli.Stdout, "  l3 cluster  %d\n", result.L3Cluster)
			return nil
		},
	}
}
