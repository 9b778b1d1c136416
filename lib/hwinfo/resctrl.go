// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"bufio"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bureau-foundation/pqos/lib/capability"
	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// ProbeCapabilities builds a capability Registry from the resctrl info
// directory and the CPU feature flags in /proc/cpuinfo.
//
// Returns an error wrapping qoserr.ErrNotSupported when resctrl is not
// mounted at roots.Resctrl. Individual resources the kernel does not
// expose are simply absent from the registry.
func ProbeCapabilities(roots Roots, logger *slog.Logger) (*capability.Registry, error) {
	logger = orDiscard(logger)
	infoDir := filepath.Join(roots.Resctrl, "info")

	if isDefaultResctrlRoot(roots.Resctrl) {
		mounted, err := isResctrlMount(roots.Resctrl)
		if err != nil {
			logger.Debug("statfs on resctrl root failed", "path", roots.Resctrl, "error", err)
		}
		if !mounted {
			return nil, fmt.Errorf("resctrl filesystem not mounted at %s: %w",
				roots.Resctrl, qoserr.ErrNotSupported)
		}
	}
	if _, err := os.Stat(infoDir); err != nil {
		return nil, fmt.Errorf("resctrl info directory %s: %w (%v)", infoDir, qoserr.ErrNotSupported, err)
	}

	flags := readCPUFlags(filepath.Join(roots.Proc, "cpuinfo"))

	var capabilities []capability.Capability

	if monitoring := probeMonitoring(infoDir, roots.Sys, logger); monitoring != nil {
		capabilities = append(capabilities, monitoring)
	}
	if allocation, ok := probeCacheAllocation(infoDir, roots.Sys, 3, flags["cdp_l3"], logger); ok {
		capabilities = append(capabilities, &capability.L3CacheAllocation{CacheAllocation: allocation})
	}
	if allocation, ok := probeCacheAllocation(infoDir, roots.Sys, 2, flags["cdp_l2"], logger); ok {
		capabilities = append(capabilities, &capability.L2CacheAllocation{CacheAllocation: allocation})
	}
	if bandwidth := probeMemoryBandwidth(infoDir, logger); bandwidth != nil {
		capabilities = append(capabilities, bandwidth)
	}

	logger.Debug("probed platform QoS capabilities", "count", len(capabilities))
	return capability.NewRegistry(capabilities...)
}

// isDefaultResctrlRoot reports whether path names the system resctrl
// mount point, after cleaning it and resolving symlinks. Only that path
// gets the statfs check; any other root is a synthetic tree.
func isDefaultResctrlRoot(path string) bool {
	cleaned := filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		cleaned = resolved
	} else if target, err := os.Readlink(cleaned); err == nil {
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(cleaned), target)
		}
		cleaned = filepath.Clean(target)
	}
	return cleaned == DefaultResctrlRoot
}

// probeCacheAllocation reads info/L<level> or, when code/data
// prioritization is on, info/L<level>CODE. With CDP enabled the kernel
// exposes code and data as separate resources sharing one class space,
// so the CODE directory's num_closids is the usable class count.
func probeCacheAllocation(infoDir, sysRoot string, level int, cdpCapable bool, logger *slog.Logger) (capability.CacheAllocation, bool) {
	name := fmt.Sprintf("L%d", level)
	resourceDir := filepath.Join(infoDir, name+"CODE")
	cdpEnabled := true
	if _, err := os.Stat(resourceDir); err != nil {
		resourceDir = filepath.Join(infoDir, name)
		cdpEnabled = false
		if _, err := os.Stat(resourceDir); err != nil {
			return capability.CacheAllocation{}, false
		}
	}

	numClasses, err := ReadSysfsUint32(filepath.Join(resourceDir, "num_closids"))
	if err != nil {
		logger.Debug("cache allocation resource without num_closids", "resource", resourceDir, "error", err)
		return capability.CacheAllocation{}, false
	}

	allocation := capability.CacheAllocation{
		NumClasses: numClasses,
		CDPCapable: cdpCapable || cdpEnabled,
		CDPEnabled: cdpEnabled,
	}
	if mask, err := readHexMask(filepath.Join(resourceDir, "cbm_mask")); err == nil {
		allocation.NumWays = uint32(bits.OnesCount64(mask))
	} else {
		logger.Debug("unreadable cbm_mask", "resource", resourceDir, "error", err)
	}
	if shareable, err := readHexMask(filepath.Join(resourceDir, "shareable_bits")); err == nil {
		allocation.WayContention = shareable
	}
	if allocation.NumWays > 0 {
		allocation.WaySize = uint32(cacheSizeAtLevel(sysRoot, level) / uint64(allocation.NumWays))
	}
	return allocation, true
}

// probeMemoryBandwidth reads info/MB.
func probeMemoryBandwidth(infoDir string, logger *slog.Logger) *capability.MemoryBandwidthAllocation {
	resourceDir := filepath.Join(infoDir, "MB")
	numClasses, err := ReadSysfsUint32(filepath.Join(resourceDir, "num_closids"))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug("memory bandwidth resource without num_closids", "error", err)
		}
		return nil
	}

	minBandwidth := ReadSysfsInt(filepath.Join(resourceDir, "min_bandwidth"))
	return &capability.MemoryBandwidthAllocation{
		NumClasses:   numClasses,
		ThrottleMax:  uint32(max(100-minBandwidth, 0)),
		ThrottleStep: uint32(ReadSysfsInt(filepath.Join(resourceDir, "bandwidth_gran"))),
		Linear:       ReadSysfsString(filepath.Join(resourceDir, "delay_linear")) == "1",
	}
}

// probeMonitoring reads info/L3_MON. Remote memory bandwidth is derived
// (total minus local), so it is offered whenever both are.
func probeMonitoring(infoDir, sysRoot string, logger *slog.Logger) *capability.Monitoring {
	resourceDir := filepath.Join(infoDir, "L3_MON")
	numRMIDs, err := ReadSysfsUint32(filepath.Join(resourceDir, "num_rmids"))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug("monitoring resource without num_rmids", "error", err)
		}
		return nil
	}

	monitoring := &capability.Monitoring{
		MaxRMID: numRMIDs,
		L3Size:  uint32(cacheSizeAtLevel(sysRoot, 3)),
	}

	features := strings.Fields(ReadSysfsString(filepath.Join(resourceDir, "mon_features")))
	for _, feature := range features {
		kind, err := capability.ParseEventKind(feature)
		if err != nil {
			logger.Debug("ignoring unknown monitoring feature", "feature", feature)
			continue
		}
		monitoring.Events = append(monitoring.Events, capability.Event{Kind: kind, MaxRMID: numRMIDs})
	}

	hasEvent := func(kind capability.EventKind) bool {
		return slices.ContainsFunc(monitoring.Events, func(event capability.Event) bool {
			return event.Kind == kind
		})
	}
	if hasEvent(capability.EventLocalMemoryBandwidth) && hasEvent(capability.EventTotalMemoryBandwidth) &&
		!hasEvent(capability.EventRemoteMemoryBandwidth) {
		monitoring.Events = append(monitoring.Events, capability.Event{
			Kind:    capability.EventRemoteMemoryBandwidth,
			MaxRMID: numRMIDs,
		})
	}

	return monitoring
}

// readCPUFlags returns the feature flags of the first processor in
// /proc/cpuinfo.
func readCPUFlags(path string) map[string]bool {
	flags := make(map[string]bool)
	file, err := os.Open(path)
	if err != nil {
		return flags
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found || strings.TrimSpace(key) != "flags" {
			continue
		}
		for _, flag := range strings.Fields(value) {
			flags[flag] = true
		}
		break
	}
	return flags
}
