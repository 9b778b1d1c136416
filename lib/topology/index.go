// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"slices"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// Index answers the same queries as Topology from lookup tables built
// once by [NewIndex]. Results and error kinds are identical to the
// scanning implementation; only the cost differs.
//
// An Index holds a reference to its Topology's core list. Like the
// Topology, it is safe for concurrent readers.
type Index struct {
	topology *Topology

	// positions maps a logical id to the first record carrying it.
	positions map[uint32]int

	// groups holds the distinct ids per kind in first-occurrence order.
	groups [groupKindCount][]uint32

	// members maps a group id to its logical ids in topology order.
	members [groupKindCount]map[uint32][]uint32
}

// NewIndex builds lookup tables for t. Returns qoserr.ErrParameter for a
// nil or empty topology.
func NewIndex(t *Topology) (*Index, error) {
	if err := t.check("topology.NewIndex"); err != nil {
		return nil, err
	}

	index := &Index{
		topology:  t,
		positions: make(map[uint32]int, len(t.Cores)),
	}
	for kind := range groupKindCount {
		index.members[kind] = make(map[uint32][]uint32)
	}

	for position := range t.Cores {
		core := &t.Cores[position]
		if _, exists := index.positions[core.LogicalID]; !exists {
			index.positions[core.LogicalID] = position
		}
		for kind := range groupKindCount {
			value := kind.selector(core)
			existing, seen := index.members[kind][value]
			if !seen {
				index.groups[kind] = append(index.groups[kind], value)
			}
			index.members[kind][value] = append(existing, core.LogicalID)
		}
	}

	return index, nil
}

// Topology returns the topology this index was built from.
func (x *Index) Topology() *Topology {
	if x == nil {
		return nil
	}
	return x.topology
}

func (x *Index) check(op string) error {
	if x == nil {
		return qoserr.Parameter(op, "index is nil")
	}
	if x.topology == nil || len(x.topology.Cores) == 0 {
		return qoserr.Parameter(op, "index has no cores (build it with NewIndex)")
	}
	return nil
}

// CountGroups returns the number of distinct groups of the given kind.
func (x *Index) CountGroups(kind GroupKind) (int, error) {
	const op = "topology.CountGroups"
	if err := x.check(op); err != nil {
		return 0, err
	}
	if err := checkKind(op, kind); err != nil {
		return 0, err
	}
	return len(x.groups[kind]), nil
}

// FillGroups is the indexed form of [Topology.FillGroups].
func (x *Index) FillGroups(kind GroupKind, dst []uint32) (int, error) {
	const op = "topology.FillGroups"
	if err := x.check(op); err != nil {
		return 0, err
	}
	if err := checkKind(op, kind); err != nil {
		return 0, err
	}
	if err := checkBuffer(op, dst); err != nil {
		return 0, err
	}

	groups := x.groups[kind]
	if len(groups) > len(dst) {
		return 0, qoserr.Capacity(op, len(groups), len(dst))
	}
	return copy(dst, groups), nil
}

// Groups is the indexed form of [Topology.Groups].
func (x *Index) Groups(kind GroupKind) ([]uint32, error) {
	const op = "topology.Groups"
	if err := x.check(op); err != nil {
		return nil, err
	}
	if err := checkKind(op, kind); err != nil {
		return nil, err
	}
	return slices.Clone(x.groups[kind]), nil
}

// CoresInGroup is the indexed form of [Topology.CoresInGroup].
func (x *Index) CoresInGroup(kind GroupKind, id uint32) ([]uint32, error) {
	const op = "topology.CoresInGroup"
	members, err := x.lookupMembers(op, kind, id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(members), nil
}

// FillCoresInGroup is the indexed form of [Topology.FillCoresInGroup].
func (x *Index) FillCoresInGroup(kind GroupKind, id uint32, dst []uint32) (int, error) {
	return x.fillCoresInGroup("topology.FillCoresInGroup", kind, id, dst)
}

// CoresOnSocket is the indexed form of [Topology.CoresOnSocket].
func (x *Index) CoresOnSocket(socket uint32, dst []uint32) (int, error) {
	return x.fillCoresInGroup("topology.CoresOnSocket", Socket, socket, dst)
}

func (x *Index) fillCoresInGroup(op string, kind GroupKind, id uint32, dst []uint32) (int, error) {
	if err := x.check(op); err != nil {
		return 0, err
	}
	if err := checkKind(op, kind); err != nil {
		return 0, err
	}
	if err := checkBuffer(op, dst); err != nil {
		return 0, err
	}

	members, err := x.lookupMembers(op, kind, id)
	if err != nil {
		return 0, err
	}
	if len(dst) == 1 {
		dst[0] = members[0]
		return 1, nil
	}
	if len(members) > len(dst) {
		return 0, qoserr.Capacity(op, len(members), len(dst))
	}
	return copy(dst, members), nil
}

func (x *Index) lookupMembers(op string, kind GroupKind, id uint32) ([]uint32, error) {
	if err := x.check(op); err != nil {
		return nil, err
	}
	if err := checkKind(op, kind); err != nil {
		return nil, err
	}
	members := x.members[kind][id]
	if len(members) == 0 {
		return nil, qoserr.NotFound(op, "no cores in %s %d", kind, id)
	}
	return members, nil
}

// CoreExists is the indexed form of [Topology.CoreExists].
func (x *Index) CoreExists(logicalID uint32) error {
	_, err := x.find("topology.CoreExists", logicalID)
	return err
}

// SocketOf is the indexed form of [Topology.SocketOf].
func (x *Index) SocketOf(logicalID uint32) (uint32, error) {
	core, err := x.find("topology.SocketOf", logicalID)
	if err != nil {
		return 0, err
	}
	return core.Socket, nil
}

// L3ClusterOf is the indexed form of [Topology.L3ClusterOf].
func (x *Index) L3ClusterOf(logicalID uint32) (uint32, error) {
	core, err := x.find("topology.L3ClusterOf", logicalID)
	if err != nil {
		return 0, err
	}
	return core.L3Cluster, nil
}

func (x *Index) find(op string, logicalID uint32) (*CoreRecord, error) {
	if err := x.check(op); err != nil {
		return nil, err
	}
	position, ok := x.positions[logicalID]
	if !ok {
		return nil, qoserr.NotFound(op, "core %d", logicalID)
	}
	return &x.topology.Cores[position], nil
}
