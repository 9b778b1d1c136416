// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot captures a probed topology and capability registry
// so they can be queried later, on another machine, or in tests.
//
// A [Snapshot] carries the core records, the capabilities in a tagged
// wire form, the version of the binary that wrote it, and a BLAKE3
// fingerprint over the deterministic CBOR encoding of its contents.
// Decoding verifies the fingerprint and rebuilds the topology and
// registry through their validating constructors, so a decoded snapshot
// is indistinguishable from a live probe.
//
// Three encodings are supported: CBOR (compact, the default for files),
// JSON (accepted with comments and trailing commas, so fixtures can be
// annotated) and YAML. [ReadFile] and [WriteFile] select the encoding
// from the file extension and handle a trailing .zst or .lz4.
//
// Decoding is bounded: a snapshot listing more cores, capabilities or
// events than the caller's limit fails with qoserr.ErrAllocation before
// any topology is built.
package snapshot
