// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Sizes written for the synthetic caches, in sysfs notation.
const (
	L2CacheSize = "1024K"
	L3CacheSize = "33792K"
)

// WriteFile creates a file at path within root, creating parent
// directories as needed.
func WriteFile(t *testing.T, root, path, content string) {
	t.Helper()
	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
}

// WriteCPU writes the topology and cache files of one logical CPU under
// root/sys. An l2 or l3 id below zero omits that cache level.
//
//	testutil.WriteCPU(t, root, 0, 0, 0, 0)  // cpu0: socket 0, L2 0, L3 0
//	testutil.WriteCPU(t, root, 4, 1, 4, -1) // cpu4: socket 1, L2 4, no L3
func WriteCPU(t *testing.T, root string, cpu, socket, l2, l3 int) {
	t.Helper()
	cpuDir := fmt.Sprintf("sys/devices/system/cpu/cpu%d", cpu)
	WriteFile(t, root, cpuDir+"/topology/physical_package_id", fmt.Sprint(socket))
	writeCacheIndex(t, root, cpuDir, 0, 1, "Data", cpu, "")
	writeCacheIndex(t, root, cpuDir, 1, 1, "Instruction", cpu, "")
	if l2 >= 0 {
		writeCacheIndex(t, root, cpuDir, 2, 2, "Unified", l2, L2CacheSize)
	}
	if l3 >= 0 {
		writeCacheIndex(t, root, cpuDir, 3, 3, "Unified", l3, L3CacheSize)
	}
}

func writeCacheIndex(t *testing.T, root, cpuDir string, index, level int, kind string, id int, size string) {
	t.Helper()
	indexDir := fmt.Sprintf("%s/cache/index%d", cpuDir, index)
	WriteFile(t, root, indexDir+"/level", fmt.Sprint(level))
	WriteFile(t, root, indexDir+"/type", kind)
	WriteFile(t, root, indexDir+"/id", fmt.Sprint(id))
	if size != "" {
		WriteFile(t, root, indexDir+"/size", size)
	}
}
