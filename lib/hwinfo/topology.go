// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bureau-foundation/pqos/lib/qoserr"
	"github.com/bureau-foundation/pqos/lib/topology"
)

// UncachedCluster marks cluster ids made up for CPUs that lack a cache
// at that level. Kernel cache ids are small indices, so setting the top
// bit keeps made-up ids from colliding with real ones on machines where
// only some CPUs report a cache.
const UncachedCluster uint32 = 1 << 31

// ProbeTopology builds a Topology from every online CPU under
// roots.Sys/devices/system/cpu. Records are ordered by logical id.
//
// Cluster ids come from cache/indexN/id for the unified (or data) cache
// at levels 2 and 3. Kernels that predate cache id files fall back to
// the lowest CPU in shared_cpu_list. A CPU with no L2 cache is its own
// L2 cluster (UncachedCluster|logical id); a CPU with no L3 cache
// shares an L3 cluster with the other uncached CPUs of its socket
// (UncachedCluster|socket).
func ProbeTopology(roots Roots, logger *slog.Logger) (*topology.Topology, error) {
	logger = orDiscard(logger)
	cpuBase := filepath.Join(roots.Sys, "devices/system/cpu")

	entries, err := os.ReadDir(cpuBase)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cpuBase, err)
	}

	var cores []topology.CoreRecord
	for _, entry := range entries {
		logicalID, ok := cpuNumber(entry.Name())
		if !ok {
			continue
		}
		cpuDir := filepath.Join(cpuBase, entry.Name())

		if !cpuOnline(cpuDir) {
			logger.Debug("skipping offline cpu", "cpu", logicalID)
			continue
		}

		socket, err := readPackageID(cpuDir)
		if err != nil {
			logger.Debug("skipping cpu without package id", "cpu", logicalID, "error", err)
			continue
		}

		core := topology.CoreRecord{
			LogicalID: logicalID,
			Socket:    socket,
			L2Cluster: UncachedCluster | logicalID,
			L3Cluster: UncachedCluster | socket,
		}
		if id, found := cacheClusterID(cpuDir, 2, logger); found {
			core.L2Cluster = id
		}
		if id, found := cacheClusterID(cpuDir, 3, logger); found {
			core.L3Cluster = id
		}
		cores = append(cores, core)
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("no usable cpus under %s: %w", cpuBase, qoserr.ErrNotFound)
	}

	slices.SortFunc(cores, func(a, b topology.CoreRecord) int {
		return cmp.Compare(a.LogicalID, b.LogicalID)
	})
	logger.Debug("probed cpu topology", "cores", len(cores))
	return topology.New(cores)
}

// cpuOnline reports whether a CPU is online. cpu0 and machines without
// hotplug support have no online file; those CPUs are always online.
func cpuOnline(cpuDir string) bool {
	value := ReadSysfsString(filepath.Join(cpuDir, "online"))
	return value != "0"
}

// readPackageID reads the socket id. Some hypervisors report -1 for
// every CPU; that is treated as a single socket 0.
func readPackageID(cpuDir string) (uint32, error) {
	path := filepath.Join(cpuDir, "topology/physical_package_id")
	if ReadSysfsString(path) == "-1" {
		return 0, nil
	}
	return ReadSysfsUint32(path)
}

// cacheClusterID returns the id of the cache instance at level that
// cpuDir shares, if the CPU has one.
func cacheClusterID(cpuDir string, level int, logger *slog.Logger) (uint32, bool) {
	cacheBase := filepath.Join(cpuDir, "cache")
	entries, err := os.ReadDir(cacheBase)
	if err != nil {
		return 0, false
	}

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "index") {
			continue
		}
		indexDir := filepath.Join(cacheBase, entry.Name())
		if ReadSysfsInt(filepath.Join(indexDir, "level")) != level {
			continue
		}
		if ReadSysfsString(filepath.Join(indexDir, "type")) == "Instruction" {
			continue
		}

		if id, err := ReadSysfsUint32(filepath.Join(indexDir, "id")); err == nil {
			return id, true
		}

		shared, err := ParseCPUList(ReadSysfsString(filepath.Join(indexDir, "shared_cpu_list")))
		if err != nil || len(shared) == 0 {
			logger.Debug("cache index has neither id nor shared_cpu_list",
				"path", indexDir, "error", err)
			continue
		}
		return slices.Min(shared), true
	}
	return 0, false
}

// cacheSizeAtLevel returns the size in bytes of cpu0's cache at level,
// or 0 if unknown.
func cacheSizeAtLevel(sysRoot string, level int) uint64 {
	cacheBase := filepath.Join(sysRoot, "devices/system/cpu/cpu0/cache")
	entries, err := os.ReadDir(cacheBase)
	if err != nil {
		return 0
	}
	for _, entry := range entries {
		indexDir := filepath.Join(cacheBase, entry.Name())
		if !strings.HasPrefix(entry.Name(), "index") ||
			ReadSysfsInt(filepath.Join(indexDir, "level")) != level ||
			ReadSysfsString(filepath.Join(indexDir, "type")) == "Instruction" {
			continue
		}
		return readCacheSize(filepath.Join(indexDir, "size"))
	}
	return 0
}
