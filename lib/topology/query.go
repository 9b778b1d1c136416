// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"slices"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// Querier is the read-only query surface shared by [*Topology] and
// [*Index].
type Querier interface {
	CountGroups(kind GroupKind) (int, error)
	FillGroups(kind GroupKind, dst []uint32) (int, error)
	Groups(kind GroupKind) ([]uint32, error)
	CoresInGroup(kind GroupKind, id uint32) ([]uint32, error)
	FillCoresInGroup(kind GroupKind, id uint32, dst []uint32) (int, error)
	CoresOnSocket(socket uint32, dst []uint32) (int, error)
	CoreExists(logicalID uint32) error
	SocketOf(logicalID uint32) (uint32, error)
	L3ClusterOf(logicalID uint32) (uint32, error)
}

var (
	_ Querier = (*Topology)(nil)
	_ Querier = (*Index)(nil)
)

// CountGroups returns the number of distinct groups of the given kind.
//
// Each record after the first opens a new group only if no earlier
// record has the same selector value, so the result does not depend on
// record order.
func (t *Topology) CountGroups(kind GroupKind) (int, error) {
	const op = "topology.CountGroups"
	if err := t.check(op); err != nil {
		return 0, err
	}
	if err := checkKind(op, kind); err != nil {
		return 0, err
	}
	return countDistinct(t.Cores, kind), nil
}

// countDistinct counts selector values by comparing each record against
// all records before it. cores must be non-empty.
func countDistinct(cores []CoreRecord, kind GroupKind) int {
	count := 1
	for i := 1; i < len(cores); i++ {
		value := kind.selector(&cores[i])
		counted := false
		for j := 0; j < i; j++ {
			if kind.selector(&cores[j]) == value {
				counted = true
				break
			}
		}
		if !counted {
			count++
		}
	}
	return count
}

// FillGroups writes the distinct group ids of the given kind into dst in
// first-occurrence order and returns how many were written. len(dst) is
// the capacity: zero is qoserr.ErrParameter, and fewer slots than groups
// is qoserr.ErrCapacity with dst unmodified.
func (t *Topology) FillGroups(kind GroupKind, dst []uint32) (int, error) {
	return t.fillGroups("topology.FillGroups", kind, dst)
}

// Sockets writes the distinct socket ids into dst in first-occurrence
// order. Same contract as FillGroups with kind Socket.
func (t *Topology) Sockets(dst []uint32) (int, error) {
	return t.fillGroups("topology.Sockets", Socket, dst)
}

func (t *Topology) fillGroups(op string, kind GroupKind, dst []uint32) (int, error) {
	if err := t.check(op); err != nil {
		return 0, err
	}
	if err := checkKind(op, kind); err != nil {
		return 0, err
	}
	if err := checkBuffer(op, dst); err != nil {
		return 0, err
	}

	needed := countDistinct(t.Cores, kind)
	if needed > len(dst) {
		return 0, qoserr.Capacity(op, needed, len(dst))
	}
	return fillDistinct(dst, t.Cores, kind), nil
}

// fillDistinct appends each selector value not yet present in the
// written prefix of dst. dst must have room for every distinct value.
func fillDistinct(dst []uint32, cores []CoreRecord, kind GroupKind) int {
	written := 0
	for i := range cores {
		value := kind.selector(&cores[i])
		if slices.Contains(dst[:written], value) {
			continue
		}
		dst[written] = value
		written++
	}
	return written
}

// Groups returns the distinct group ids of the given kind in
// first-occurrence order as a new slice.
func (t *Topology) Groups(kind GroupKind) ([]uint32, error) {
	const op = "topology.Groups"
	if err := t.check(op); err != nil {
		return nil, err
	}
	if err := checkKind(op, kind); err != nil {
		return nil, err
	}

	groups := make([]uint32, countDistinct(t.Cores, kind))
	fillDistinct(groups, t.Cores, kind)
	return groups, nil
}

// CoresInGroup returns the logical ids of every core whose kind field
// equals id, in topology order, as a new slice. A group with no cores is
// reported as qoserr.ErrNotFound, never as an empty slice.
func (t *Topology) CoresInGroup(kind GroupKind, id uint32) ([]uint32, error) {
	return t.coresInGroup("topology.CoresInGroup", kind, id)
}

// CoresOfL3Cluster returns the logical ids of every core sharing the
// given L3 cluster. Same contract as CoresInGroup with kind L3Cluster.
func (t *Topology) CoresOfL3Cluster(id uint32) ([]uint32, error) {
	return t.coresInGroup("topology.CoresOfL3Cluster", L3Cluster, id)
}

func (t *Topology) coresInGroup(op string, kind GroupKind, id uint32) ([]uint32, error) {
	if err := t.check(op); err != nil {
		return nil, err
	}
	if err := checkKind(op, kind); err != nil {
		return nil, err
	}

	var cores []uint32
	for i := range t.Cores {
		if kind.selector(&t.Cores[i]) == id {
			cores = append(cores, t.Cores[i].LogicalID)
		}
	}
	if len(cores) == 0 {
		return nil, qoserr.NotFound(op, "no cores in %s %d", kind, id)
	}
	return cores, nil
}

// FillCoresInGroup writes the logical ids of the cores in group id into
// dst in topology order and returns how many were written.
//
// A single-slot dst is a request for any one core of the group: the
// first match is written and the scan stops. For larger buffers, more
// matches than len(dst) is qoserr.ErrCapacity with dst unmodified. No
// match is qoserr.ErrNotFound; an empty dst is qoserr.ErrParameter.
func (t *Topology) FillCoresInGroup(kind GroupKind, id uint32, dst []uint32) (int, error) {
	return t.fillCoresInGroup("topology.FillCoresInGroup", kind, id, dst)
}

// CoresOnSocket is FillCoresInGroup for kind Socket.
func (t *Topology) CoresOnSocket(socket uint32, dst []uint32) (int, error) {
	return t.fillCoresInGroup("topology.CoresOnSocket", Socket, socket, dst)
}

func (t *Topology) fillCoresInGroup(op string, kind GroupKind, id uint32, dst []uint32) (int, error) {
	if err := t.check(op); err != nil {
		return 0, err
	}
	if err := checkKind(op, kind); err != nil {
		return 0, err
	}
	if err := checkBuffer(op, dst); err != nil {
		return 0, err
	}

	if len(dst) == 1 {
		for i := range t.Cores {
			if kind.selector(&t.Cores[i]) == id {
				dst[0] = t.Cores[i].LogicalID
				return 1, nil
			}
		}
		return 0, qoserr.NotFound(op, "no cores in %s %d", kind, id)
	}

	needed := 0
	for i := range t.Cores {
		if kind.selector(&t.Cores[i]) == id {
			needed++
		}
	}
	if needed == 0 {
		return 0, qoserr.NotFound(op, "no cores in %s %d", kind, id)
	}
	if needed > len(dst) {
		return 0, qoserr.Capacity(op, needed, len(dst))
	}

	written := 0
	for i := range t.Cores {
		if kind.selector(&t.Cores[i]) == id {
			dst[written] = t.Cores[i].LogicalID
			written++
		}
	}
	return written, nil
}

// CoreExists returns nil if logicalID is a core of this topology and
// qoserr.ErrNotFound otherwise.
func (t *Topology) CoreExists(logicalID uint32) error {
	_, err := t.find("topology.CoreExists", logicalID)
	return err
}

// SocketOf returns the socket id of the given core.
func (t *Topology) SocketOf(logicalID uint32) (uint32, error) {
	core, err := t.find("topology.SocketOf", logicalID)
	if err != nil {
		return 0, err
	}
	return core.Socket, nil
}

// L3ClusterOf returns the L3 cluster id of the given core.
func (t *Topology) L3ClusterOf(logicalID uint32) (uint32, error) {
	core, err := t.find("topology.L3ClusterOf", logicalID)
	if err != nil {
		return 0, err
	}
	return core.L3Cluster, nil
}

// find returns the first record with the given logical id.
func (t *Topology) find(op string, logicalID uint32) (*CoreRecord, error) {
	if err := t.check(op); err != nil {
		return nil, err
	}
	for i := range t.Cores {
		if t.Cores[i].LogicalID == logicalID {
			return &t.Cores[i], nil
		}
	}
	return nil, qoserr.NotFound(op, "core %d", logicalID)
}
