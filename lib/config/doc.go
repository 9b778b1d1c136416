// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the pqos
// command.
//
// Configuration is loaded from a single file specified by either the
// PQOS_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search. When neither is given the command runs with [Default],
// which reads the standard Linux mount points.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${PQOS_SYSFS}, and ${VAR:-default} patterns are expanded.
// PQOS_SYSFS is the configured sysfs root, so a resctrl path of
// "${PQOS_SYSFS}/fs/resctrl" follows a relocated sysfs. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Snapshot, Log, Output
//   - [Default] -- returns a Config for the running machine
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
//
// This package depends on no other pqos packages.
package config
