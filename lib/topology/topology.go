// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// CoreRecord describes one logical core and the groups it belongs to.
type CoreRecord struct {
	// LogicalID is the operating-system CPU number. Unique within a
	// Topology.
	LogicalID uint32 `json:"logical_id" yaml:"logical_id"`

	// Socket is the physical package id.
	Socket uint32 `json:"socket" yaml:"socket"`

	// L2Cluster identifies the L2 cache instance this core shares.
	L2Cluster uint32 `json:"l2_cluster" yaml:"l2_cluster"`

	// L3Cluster identifies the L3 cache instance this core shares.
	L3Cluster uint32 `json:"l3_cluster" yaml:"l3_cluster"`
}

// GroupKind selects which CoreRecord field defines group membership.
type GroupKind int

const (
	// Socket groups cores by physical package.
	Socket GroupKind = iota
	// L2Cluster groups cores by shared L2 cache.
	L2Cluster
	// L3Cluster groups cores by shared L3 cache.
	L3Cluster

	groupKindCount
)

// Valid reports whether k is one of the defined group kinds.
func (k GroupKind) Valid() bool {
	return k >= Socket && k < groupKindCount
}

func (k GroupKind) String() string {
	switch k {
	case Socket:
		return "socket"
	case L2Cluster:
		return "l2"
	case L3Cluster:
		return "l3"
	default:
		return fmt.Sprintf("GroupKind(%d)", int(k))
	}
}

// ParseGroupKind converts a CLI or config name into a GroupKind.
// Accepted names are "socket", "l2", "l2cluster", "l3" and "l3cluster",
// case-insensitively.
func ParseGroupKind(name string) (GroupKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "socket", "sockets":
		return Socket, nil
	case "l2", "l2cluster":
		return L2Cluster, nil
	case "l3", "l3cluster":
		return L3Cluster, nil
	default:
		return 0, qoserr.Parameter("topology.ParseGroupKind",
			"unknown group kind %q (want socket, l2 or l3)", name)
	}
}

// selector returns the field of core that k groups by. k must be valid.
func (k GroupKind) selector(core *CoreRecord) uint32 {
	switch k {
	case Socket:
		return core.Socket
	case L2Cluster:
		return core.L2Cluster
	default:
		return core.L3Cluster
	}
}

// Topology is an immutable snapshot of a machine's logical cores.
//
// Construct with [New], which enforces a non-empty core list and unique
// logical ids. A Topology built as a struct literal is still accepted by
// every query; an empty one is rejected with qoserr.ErrParameter.
type Topology struct {
	// Cores is the per-core record list in discovery order. Not
	// required to be sorted by any key.
	Cores []CoreRecord `json:"cores" yaml:"cores"`
}

// New copies cores into a new Topology. Returns qoserr.ErrParameter if
// cores is empty or contains a repeated logical id.
func New(cores []CoreRecord) (*Topology, error) {
	const op = "topology.New"
	if len(cores) == 0 {
		return nil, qoserr.Parameter(op, "topology has no cores")
	}

	seen := make(map[uint32]struct{}, len(cores))
	for _, core := range cores {
		if _, duplicate := seen[core.LogicalID]; duplicate {
			return nil, qoserr.Parameter(op, "duplicate logical id %d", core.LogicalID)
		}
		seen[core.LogicalID] = struct{}{}
	}

	copied := make([]CoreRecord, len(cores))
	copy(copied, cores)
	return &Topology{Cores: copied}, nil
}

// Len returns the number of logical cores, or 0 for a nil Topology.
func (t *Topology) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Cores)
}

// check rejects a nil or empty topology on behalf of op.
func (t *Topology) check(op string) error {
	if t == nil {
		return qoserr.Parameter(op, "topology is nil")
	}
	if len(t.Cores) == 0 {
		return qoserr.Parameter(op, "topology has no cores")
	}
	return nil
}

func checkKind(op string, kind GroupKind) error {
	if !kind.Valid() {
		return qoserr.Parameter(op, "invalid group kind %d", int(kind))
	}
	return nil
}

func checkBuffer(op string, dst []uint32) error {
	if len(dst) == 0 {
		return qoserr.Parameter(op, "output buffer has zero capacity")
	}
	return nil
}
