// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwinfo discovers the CPU topology and platform QoS
// capabilities of a Linux machine and hands them to the query packages
// as immutable snapshots.
//
// # Topology
//
// [ProbeTopology] walks /sys/devices/system/cpu/cpuN for every online
// CPU and reads the physical package id and the ids of the L2 and L3
// cache instances the CPU shares, producing a topology.Topology.
//
// # Capabilities
//
// [ProbeCapabilities] reads the resctrl filesystem's info directory
// (normally /sys/fs/resctrl/info) and /proc/cpuinfo flags, producing a
// capability.Registry with whichever of monitoring, L3 and L2 cache
// allocation and memory bandwidth allocation the kernel exposes. An
// unmounted resctrl filesystem yields qoserr.ErrNotSupported.
//
// # Synthetic roots
//
// Every probe takes a [Roots] value naming the sysfs, procfs and
// resctrl mount points, so tests point it at t.TempDir() trees instead
// of the real machine.
//
// Missing or unreadable files are skipped with a Debug log rather than
// failing the probe: a VM without cache id files still has a usable
// topology, and a CPU without monitoring still has cache allocation.
package hwinfo
