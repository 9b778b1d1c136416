// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package hwinfo

// isResctrlMount always reports false: resctrl exists only on Linux.
func isResctrlMount(path string) (bool, error) {
	return false, nil
}
