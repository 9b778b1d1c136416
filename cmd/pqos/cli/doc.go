// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the pqos command.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a flag source, and a Run
// function. Flags come either from a [pflag.FlagSet] factory
// ([Command.Flags]) or from a tagged parameter struct ([Command.Params],
// bound by [BindFlags]). Commands are assembled into a tree in
// cmd/pqos/commands and dispatched via [Command.Execute], which handles
// flag parsing, subcommand routing, and structured help output with
// examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Output helpers: [JSONOutput] adds a --json flag to a parameter struct,
// [Heading] styles section titles when stdout is a terminal, and
// [ExitError] reports a non-zero exit for results such as "core not
// found" that the command has already printed.
package cli
