// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package qoserr defines the error taxonomy shared by the topology and
// capability query packages.
//
// Every failure is one of five kinds, exposed as sentinel errors and
// matched with [errors.Is]:
//
//   - [ErrParameter]: the caller passed something unusable (nil
//     receiver, invalid enum value, zero output capacity, no output
//     requested). Always caller-fixable.
//   - [ErrNotFound]: a specific core, group, or event is absent from
//     an otherwise well-formed structure.
//   - [ErrNotSupported]: the platform does not offer a capability kind
//     at all. Callers branch on this to skip a feature, so it is never
//     conflated with ErrNotFound.
//   - [ErrCapacity]: a caller-supplied buffer is too small. Nothing has
//     been written to the buffer when this is returned.
//   - [ErrAllocation]: an allocating operation refused to size its
//     output.
//
// Query functions return an [*Error] that names the operation and the
// offending value; its Unwrap returns the sentinel:
//
//	if _, err := topo.SocketOf(7); errors.Is(err, qoserr.ErrNotFound) {
//	    // core 7 is not part of this machine
//	}
//
// This package depends on no other pqos packages.
package qoserr
