// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/pqos/lib/capability"
	"github.com/bureau-foundation/pqos/lib/qoserr"
	"github.com/bureau-foundation/pqos/lib/testutil"
	"github.com/bureau-foundation/pqos/lib/topology"
)

// syntheticRoots returns Roots under a fresh temporary directory.
func syntheticRoots(t *testing.T) (string, Roots) {
	t.Helper()
	root := t.TempDir()
	return root, Roots{
		Sys:     filepath.Join(root, "sys"),
		Proc:    filepath.Join(root, "proc"),
		Resctrl: filepath.Join(root, "resctrl"),
	}
}

func TestProbe_WithoutResctrl(t *testing.T) {
	root, roots := syntheticRoots(t)
	testutil.WriteCPU(t, root, 0, 0, 0, 0)
	testutil.WriteCPU(t, root, 1, 0, 0, 0)

	topo, registry, err := Probe(roots, nil)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if topo.Len() != 2 {
		t.Errorf("topology has %d cores, want 2", topo.Len())
	}
	_, err = registry.FindByKind(capability.KindL3CA)
	if !errors.Is(err, qoserr.ErrNotSupported) {
		t.Errorf("FindByKind on empty registry = %v, want ErrNotSupported", err)
	}
}

func TestProbe_Full(t *testing.T) {
	root, roots := syntheticRoots(t)
	testutil.WriteCPU(t, root, 0, 0, 0, 0)
	testutil.WriteCPU(t, root, 1, 0, 1, 0)
	testutil.WriteFile(t, root, "resctrl/info/L3/num_closids", "16")
	testutil.WriteFile(t, root, "resctrl/info/L3/cbm_mask", "7ff")

	topo, registry, err := Probe(roots, nil)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	want := []topology.CoreRecord{
		{LogicalID: 0, Socket: 0, L2Cluster: 0, L3Cluster: 0},
		{LogicalID: 1, Socket: 0, L2Cluster: 1, L3Cluster: 0},
	}
	if diff := cmp.Diff(want, topo.Cores); diff != "" {
		t.Errorf("cores mismatch (-want +got):\n%s", diff)
	}
	count, err := registry.ClassCount(capability.KindL3CA)
	if err != nil || count != 16 {
		t.Errorf("ClassCount(l3ca) = %d, %v; want 16", count, err)
	}
}

func TestProbe_NoCPUs(t *testing.T) {
	_, roots := syntheticRoots(t)
	if _, _, err := Probe(roots, nil); err == nil {
		t.Fatal("Probe on an empty sysfs should fail")
	}
}
