// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"fmt"
	"strconv"
	"strings"

	"k8s.io/utils/cpuset"
)

// MaxCPUNumber is the largest CPU number a CPU list may name. Linux
// caps NR_CPUS at 8192; the bound keeps a corrupt list such as
// "0-4294967295" from expanding into billions of entries.
const MaxCPUNumber = 1<<16 - 1

// ParseCPUList parses the kernel's CPU list format ("0-3,8,10-11") into
// ascending, distinct CPU numbers. An empty string yields an empty list.
func ParseCPUList(list string) ([]uint32, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	for _, field := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == '-' }) {
		number, err := strconv.ParseUint(strings.TrimSpace(field), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing cpu list %q: %w", list, err)
		}
		if number > MaxCPUNumber {
			return nil, fmt.Errorf("parsing cpu list %q: cpu %d exceeds %d", list, number, MaxCPUNumber)
		}
	}

	set, err := cpuset.Parse(list)
	if err != nil {
		return nil, fmt.Errorf("parsing cpu list %q: %w", list, err)
	}
	members := set.List()
	cpus := make([]uint32, len(members))
	for i, cpu := range members {
		cpus[i] = uint32(cpu)
	}
	return cpus, nil
}

// FormatCPUList renders CPU numbers in the kernel's list format,
// sorted and with consecutive runs collapsed: [8 0 1 2 3] becomes
// "0-3,8".
func FormatCPUList(cpus []uint32) string {
	members := make([]int, len(cpus))
	for i, cpu := range cpus {
		members[i] = int(cpu)
	}
	return cpuset.New(members...).String()
}
