// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// threeCores is the small mixed topology used throughout: two sockets,
// two L2 clusters, one shared L3.
func threeCores(t *testing.T) *Topology {
	t.Helper()
	return mustNew(t, []CoreRecord{
		{LogicalID: 0, Socket: 0, L2Cluster: 0, L3Cluster: 0},
		{LogicalID: 1, Socket: 0, L2Cluster: 0, L3Cluster: 0},
		{LogicalID: 2, Socket: 1, L2Cluster: 1, L3Cluster: 0},
	})
}

// dualSocket builds 32 logical cores: 2 sockets, pairs of cores per L2,
// 8 cores per L3. Logical ids are interleaved across sockets the way
// Linux numbers hyperthreads on many servers.
func dualSocket(t *testing.T) *Topology {
	t.Helper()
	cores := make([]CoreRecord, 0, 32)
	for i := range uint32(32) {
		cores = append(cores, CoreRecord{
			LogicalID: (i%2)*16 + i/2,
			Socket:    i / 16,
			L2Cluster: i / 2,
			L3Cluster: i / 8,
		})
	}
	return mustNew(t, cores)
}

func mustNew(t *testing.T, cores []CoreRecord) *Topology {
	t.Helper()
	topo, err := New(cores)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return topo
}

// implementations returns both query engines over topo so every test
// checks that they agree.
func implementations(t *testing.T, topo *Topology) map[string]Querier {
	t.Helper()
	index, err := NewIndex(topo)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return map[string]Querier{"scan": topo, "index": index}
}

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want %v", err, kind)
	}
}

// distinctValues is the reference implementation for group counting.
func distinctValues(topo *Topology, kind GroupKind) map[uint32][]uint32 {
	groups := make(map[uint32][]uint32)
	for _, core := range topo.Cores {
		value := kind.selector(&core)
		groups[value] = append(groups[value], core.LogicalID)
	}
	return groups
}

func TestNew(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := New(nil)
		requireKind(t, err, qoserr.ErrParameter)
	})

	t.Run("duplicate logical id", func(t *testing.T) {
		_, err := New([]CoreRecord{{LogicalID: 4}, {LogicalID: 4, Socket: 1}})
		requireKind(t, err, qoserr.ErrParameter)
	})

	t.Run("copies input", func(t *testing.T) {
		cores := []CoreRecord{{LogicalID: 0, Socket: 0}}
		topo := mustNew(t, cores)
		cores[0].Socket = 9
		if topo.Cores[0].Socket != 0 {
			t.Errorf("Topology shares its input slice: Socket = %d", topo.Cores[0].Socket)
		}
	})
}

func TestWorkedExample(t *testing.T) {
	for name, query := range implementations(t, threeCores(t)) {
		t.Run(name, func(t *testing.T) {
			sockets, err := query.CountGroups(Socket)
			if err != nil || sockets != 2 {
				t.Errorf("CountGroups(Socket) = %d, %v; want 2, nil", sockets, err)
			}
			l3, err := query.CountGroups(L3Cluster)
			if err != nil || l3 != 1 {
				t.Errorf("CountGroups(L3Cluster) = %d, %v; want 1, nil", l3, err)
			}
			l2, err := query.CountGroups(L2Cluster)
			if err != nil || l2 != 2 {
				t.Errorf("CountGroups(L2Cluster) = %d, %v; want 2, nil", l2, err)
			}

			cores, err := query.CoresInGroup(Socket, 1)
			if err != nil {
				t.Fatalf("CoresInGroup(Socket, 1): %v", err)
			}
			if diff := cmp.Diff([]uint32{2}, cores); diff != "" {
				t.Errorf("CoresInGroup(Socket, 1) mismatch (-want +got):\n%s", diff)
			}

			requireKind(t, query.CoreExists(3), qoserr.ErrNotFound)
		})
	}
}

func TestCountGroups_PermutationInvariant(t *testing.T) {
	base := dualSocket(t)
	random := rand.New(rand.NewPCG(7, 11))

	for _, kind := range []GroupKind{Socket, L2Cluster, L3Cluster} {
		want := len(distinctValues(base, kind))
		for round := range 20 {
			shuffled := slices.Clone(base.Cores)
			random.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			for name, query := range implementations(t, mustNew(t, shuffled)) {
				got, err := query.CountGroups(kind)
				if err != nil {
					t.Fatalf("%s round %d: CountGroups(%s): %v", name, round, kind, err)
				}
				if got != want {
					t.Errorf("%s round %d: CountGroups(%s) = %d, want %d", name, round, kind, got, want)
				}
			}
		}
	}
}

func TestFillGroups_FirstOccurrenceOrder(t *testing.T) {
	topo := mustNew(t, []CoreRecord{
		{LogicalID: 0, Socket: 3},
		{LogicalID: 1, Socket: 1},
		{LogicalID: 2, Socket: 3},
		{LogicalID: 3, Socket: 0},
		{LogicalID: 4, Socket: 1},
	})

	for name, query := range implementations(t, topo) {
		t.Run(name, func(t *testing.T) {
			dst := make([]uint32, 8)
			count, err := query.FillGroups(Socket, dst)
			if err != nil {
				t.Fatalf("FillGroups: %v", err)
			}
			if diff := cmp.Diff([]uint32{3, 1, 0}, dst[:count]); diff != "" {
				t.Errorf("FillGroups mismatch (-want +got):\n%s", diff)
			}

			groups, err := query.Groups(Socket)
			if err != nil {
				t.Fatalf("Groups: %v", err)
			}
			if diff := cmp.Diff([]uint32{3, 1, 0}, groups); diff != "" {
				t.Errorf("Groups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSockets_IncludesFirstRecord(t *testing.T) {
	topo := mustNew(t, []CoreRecord{
		{LogicalID: 0, Socket: 5},
		{LogicalID: 1, Socket: 6},
	})
	dst := make([]uint32, 2)
	count, err := topo.Sockets(dst)
	if err != nil {
		t.Fatalf("Sockets: %v", err)
	}
	if diff := cmp.Diff([]uint32{5, 6}, dst[:count]); diff != "" {
		t.Errorf("Sockets mismatch (-want +got):\n%s", diff)
	}
}

func TestFillGroups_CapacityLeavesBufferUntouched(t *testing.T) {
	for name, query := range implementations(t, dualSocket(t)) {
		t.Run(name, func(t *testing.T) {
			dst := []uint32{99, 99, 99}
			_, err := query.FillGroups(L3Cluster, dst)
			requireKind(t, err, qoserr.ErrCapacity)
			if diff := cmp.Diff([]uint32{99, 99, 99}, dst); diff != "" {
				t.Errorf("buffer modified on capacity error (-want +got):\n%s", diff)
			}

			_, err = query.FillGroups(Socket, nil)
			requireKind(t, err, qoserr.ErrParameter)
		})
	}
}

func TestCoresInGroup_ExactMembership(t *testing.T) {
	topo := dualSocket(t)
	for name, query := range implementations(t, topo) {
		t.Run(name, func(t *testing.T) {
			for _, kind := range []GroupKind{Socket, L2Cluster, L3Cluster} {
				for group, want := range distinctValues(topo, kind) {
					got, err := query.CoresInGroup(kind, group)
					if err != nil {
						t.Fatalf("CoresInGroup(%s, %d): %v", kind, group, err)
					}
					if diff := cmp.Diff(want, got); diff != "" {
						t.Errorf("CoresInGroup(%s, %d) mismatch (-want +got):\n%s", kind, group, diff)
					}
				}

				cores, err := query.CoresInGroup(kind, 1000)
				requireKind(t, err, qoserr.ErrNotFound)
				if cores != nil {
					t.Errorf("CoresInGroup(%s, 1000) returned %v with not-found error", kind, cores)
				}
			}
		})
	}
}

func TestCoresInGroup_ReturnsOwnedSlice(t *testing.T) {
	topo := threeCores(t)
	for name, query := range implementations(t, topo) {
		t.Run(name, func(t *testing.T) {
			first, err := query.CoresInGroup(Socket, 0)
			if err != nil {
				t.Fatalf("CoresInGroup: %v", err)
			}
			first[0] = 77
			second, err := query.CoresInGroup(Socket, 0)
			if err != nil {
				t.Fatalf("CoresInGroup: %v", err)
			}
			if diff := cmp.Diff([]uint32{0, 1}, second); diff != "" {
				t.Errorf("caller mutation leaked into engine (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoresOfL3Cluster(t *testing.T) {
	topo := dualSocket(t)
	cores, err := topo.CoresOfL3Cluster(1)
	if err != nil {
		t.Fatalf("CoresOfL3Cluster: %v", err)
	}
	if diff := cmp.Diff(distinctValues(topo, L3Cluster)[1], cores); diff != "" {
		t.Errorf("CoresOfL3Cluster(1) mismatch (-want +got):\n%s", diff)
	}

	_, err = topo.CoresOfL3Cluster(9)
	requireKind(t, err, qoserr.ErrNotFound)
}

func TestCoresOnSocket(t *testing.T) {
	topo := threeCores(t)

	for name, query := range implementations(t, topo) {
		t.Run(name, func(t *testing.T) {
			t.Run("single slot returns first match", func(t *testing.T) {
				dst := []uint32{42}
				count, err := query.CoresOnSocket(0, dst)
				if err != nil {
					t.Fatalf("CoresOnSocket: %v", err)
				}
				if count != 1 || dst[0] != 0 {
					t.Errorf("CoresOnSocket(0, [1]) = %d %v, want 1 [0]", count, dst)
				}
			})

			t.Run("exact fit", func(t *testing.T) {
				dst := make([]uint32, 2)
				count, err := query.CoresOnSocket(0, dst)
				if err != nil {
					t.Fatalf("CoresOnSocket: %v", err)
				}
				if diff := cmp.Diff([]uint32{0, 1}, dst[:count]); diff != "" {
					t.Errorf("CoresOnSocket mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("zero capacity", func(t *testing.T) {
				_, err := query.CoresOnSocket(0, []uint32{})
				requireKind(t, err, qoserr.ErrParameter)
			})

			t.Run("unknown socket", func(t *testing.T) {
				_, err := query.CoresOnSocket(5, make([]uint32, 4))
				requireKind(t, err, qoserr.ErrNotFound)
				_, err = query.CoresOnSocket(5, make([]uint32, 1))
				requireKind(t, err, qoserr.ErrNotFound)
			})
		})
	}
}

func TestCoresOnSocket_CapacityNeverTruncates(t *testing.T) {
	for name, query := range implementations(t, dualSocket(t)) {
		t.Run(name, func(t *testing.T) {
			for _, capacity := range []int{2, 8, 15} {
				dst := make([]uint32, capacity)
				for i := range dst {
					dst[i] = 1 << 31
				}
				count, err := query.CoresOnSocket(1, dst)
				requireKind(t, err, qoserr.ErrCapacity)
				if count != 0 {
					t.Errorf("capacity %d: count = %d on capacity error", capacity, count)
				}
				for i, value := range dst {
					if value != 1<<31 {
						t.Fatalf("capacity %d: dst[%d] = %d written on capacity error", capacity, i, value)
					}
				}
			}

			dst := make([]uint32, 16)
			count, err := query.CoresOnSocket(1, dst)
			if err != nil || count != 16 {
				t.Errorf("CoresOnSocket(1, [16]) = %d, %v; want 16, nil", count, err)
			}
		})
	}
}

func TestReverseLookupsAgree(t *testing.T) {
	topo := dualSocket(t)
	for name, query := range implementations(t, topo) {
		t.Run(name, func(t *testing.T) {
			for _, core := range topo.Cores {
				if err := query.CoreExists(core.LogicalID); err != nil {
					t.Fatalf("CoreExists(%d): %v", core.LogicalID, err)
				}
				socket, err := query.SocketOf(core.LogicalID)
				if err != nil {
					t.Fatalf("SocketOf(%d): %v", core.LogicalID, err)
				}
				cluster, err := query.L3ClusterOf(core.LogicalID)
				if err != nil {
					t.Fatalf("L3ClusterOf(%d): %v", core.LogicalID, err)
				}

				onSocket, err := query.CoresInGroup(Socket, socket)
				if err != nil || !slices.Contains(onSocket, core.LogicalID) {
					t.Errorf("core %d not in CoresInGroup(Socket, %d) = %v (%v)", core.LogicalID, socket, onSocket, err)
				}
				inCluster, err := query.CoresInGroup(L3Cluster, cluster)
				if err != nil || !slices.Contains(inCluster, core.LogicalID) {
					t.Errorf("core %d not in CoresInGroup(L3Cluster, %d) = %v (%v)", core.LogicalID, cluster, inCluster, err)
				}
			}

			requireKind(t, query.CoreExists(64), qoserr.ErrNotFound)
			_, err := query.SocketOf(64)
			requireKind(t, err, qoserr.ErrNotFound)
			_, err = query.L3ClusterOf(64)
			requireKind(t, err, qoserr.ErrNotFound)
		})
	}
}

func TestInvalidGroupKind(t *testing.T) {
	bad := GroupKind(7)
	for name, query := range implementations(t, threeCores(t)) {
		t.Run(name, func(t *testing.T) {
			_, err := query.CountGroups(bad)
			requireKind(t, err, qoserr.ErrParameter)
			_, err = query.FillGroups(bad, make([]uint32, 4))
			requireKind(t, err, qoserr.ErrParameter)
			_, err = query.Groups(bad)
			requireKind(t, err, qoserr.ErrParameter)
			_, err = query.CoresInGroup(bad, 0)
			requireKind(t, err, qoserr.ErrParameter)
			_, err = query.FillCoresInGroup(bad, 0, make([]uint32, 1))
			requireKind(t, err, qoserr.ErrParameter)
		})
	}
}

func TestEmptyTopology(t *testing.T) {
	for name, topo := range map[string]*Topology{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			count, err := topo.CountGroups(Socket)
			requireKind(t, err, qoserr.ErrParameter)
			if count != 0 {
				t.Errorf("CountGroups returned %d with error", count)
			}
			_, err = topo.FillGroups(Socket, make([]uint32, 4))
			requireKind(t, err, qoserr.ErrParameter)
			_, err = topo.Groups(Socket)
			requireKind(t, err, qoserr.ErrParameter)
			_, err = topo.CoresInGroup(Socket, 0)
			requireKind(t, err, qoserr.ErrParameter)
			_, err = topo.CoresOnSocket(0, make([]uint32, 4))
			requireKind(t, err, qoserr.ErrParameter)
			requireKind(t, topo.CoreExists(0), qoserr.ErrParameter)
			_, err = topo.SocketOf(0)
			requireKind(t, err, qoserr.ErrParameter)
			_, err = topo.L3ClusterOf(0)
			requireKind(t, err, qoserr.ErrParameter)
			_, err = topo.Summary()
			requireKind(t, err, qoserr.ErrParameter)
			_, err = NewIndex(topo)
			requireKind(t, err, qoserr.ErrParameter)
		})
	}

	var index *Index
	_, err := index.CountGroups(Socket)
	requireKind(t, err, qoserr.ErrParameter)
	requireKind(t, index.CoreExists(0), qoserr.ErrParameter)

	// A zero Index has no topology behind it and must not answer zero.
	var zero Index
	count, err := zero.CountGroups(Socket)
	requireKind(t, err, qoserr.ErrParameter)
	if count != 0 {
		t.Errorf("zero Index CountGroups returned %d with error", count)
	}
	groups, err := zero.Groups(Socket)
	requireKind(t, err, qoserr.ErrParameter)
	if groups != nil {
		t.Errorf("zero Index Groups returned %v with error", groups)
	}
	_, err = zero.FillGroups(Socket, make([]uint32, 4))
	requireKind(t, err, qoserr.ErrParameter)
	_, err = zero.CoresInGroup(Socket, 0)
	requireKind(t, err, qoserr.ErrParameter)
	_, err = zero.CoresOnSocket(0, make([]uint32, 4))
	requireKind(t, err, qoserr.ErrParameter)
	requireKind(t, zero.CoreExists(0), qoserr.ErrParameter)
	_, err = zero.SocketOf(0)
	requireKind(t, err, qoserr.ErrParameter)
	_, err = zero.L3ClusterOf(0)
	requireKind(t, err, qoserr.ErrParameter)
}

func TestSummary(t *testing.T) {
	summary, err := dualSocket(t).Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := Summary{Cores: 32, Sockets: 2, L2Clusters: 16, L3Clusters: 4}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGroupKind(t *testing.T) {
	tests := []struct {
		input string
		want  GroupKind
	}{
		{"socket", Socket},
		{"Socket", Socket},
		{"l2", L2Cluster},
		{"l2cluster", L2Cluster},
		{" L3 ", L3Cluster},
		{"l3cluster", L3Cluster},
	}
	for _, test := range tests {
		got, err := ParseGroupKind(test.input)
		if err != nil {
			t.Errorf("ParseGroupKind(%q): %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseGroupKind(%q) = %s, want %s", test.input, got, test.want)
		}
		if reparsed, _ := ParseGroupKind(got.String()); reparsed != got {
			t.Errorf("ParseGroupKind(%q.String()) = %s", got, reparsed)
		}
	}

	_, err := ParseGroupKind("numa")
	requireKind(t, err, qoserr.ErrParameter)
}
