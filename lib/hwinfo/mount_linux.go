// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package hwinfo

import (
	"golang.org/x/sys/unix"
)

// resctrlSuperMagic is RDTGROUP_SUPER_MAGIC from linux/magic.h.
const resctrlSuperMagic = 0x7655821

// isResctrlMount reports whether path is the root of a mounted resctrl
// filesystem.
func isResctrlMount(path string) (bool, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return false, err
	}
	return int64(stat.Type) == resctrlSuperMagic, nil
}
