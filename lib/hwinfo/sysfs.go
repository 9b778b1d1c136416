// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadSysfsString reads a single-line sysfs file and returns its
// trimmed content. Returns "" on any error.
func ReadSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ReadSysfsInt reads an integer from a sysfs file. Returns 0 on error.
func ReadSysfsInt(path string) int {
	value := ReadSysfsString(path)
	if value == "" {
		return 0
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

// ReadSysfsUint32 reads an unsigned decimal id from a sysfs file.
// Unlike ReadSysfsInt it reports missing and malformed files, because a
// zero id is a valid value that must not be confused with absence.
func ReadSysfsUint32(path string) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return uint32(value), nil
}

// readHexMask parses a resctrl bitmask file such as cbm_mask ("7ff").
func readHexMask(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(strings.TrimSpace(string(data)), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return value, nil
}

// readCacheSize parses a cache size file (e.g., "32768K") and returns
// the value in bytes. Returns 0 if the file is missing or malformed.
func readCacheSize(path string) uint64 {
	value := ReadSysfsString(path)
	if value == "" {
		return 0
	}
	multiplier := uint64(1)
	switch {
	case strings.HasSuffix(value, "K"):
		multiplier = 1024
	case strings.HasSuffix(value, "M"):
		multiplier = 1024 * 1024
	}
	value = strings.TrimRight(value, "KM")
	size, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return size * multiplier
}

// cpuNumber extracts N from a "cpuN" directory name, rejecting cpufreq,
// cpuidle and similar siblings.
func cpuNumber(name string) (uint32, bool) {
	suffix, found := strings.CutPrefix(name, "cpu")
	if !found || suffix == "" {
		return 0, false
	}
	for _, character := range suffix {
		if character < '0' || character > '9' {
			return 0, false
		}
	}
	number, err := strconv.ParseUint(suffix, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(number), true
}
