// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for pqos packages.
//
// [WriteFile] and [WriteCPU] build synthetic sysfs, procfs and resctrl
// trees under a test's temporary directory, so probing code can be
// exercised without root access or particular hardware. [WriteCPU]
// lays out one logical CPU the way Linux does: a package id, split L1
// data and instruction caches, and optional unified L2 and L3 caches
// with cluster ids.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no pqos-internal dependencies.
package testutil
