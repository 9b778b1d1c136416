// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration used for pqos
// snapshots and fingerprints.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same topology and capability set always produce identical bytes,
// which is what makes snapshot fingerprints stable across runs and
// machines.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Snapshots come from files an operator hands to the CLI, so decoding
// them goes through [UnmarshalLimited], which caps array lengths before
// the decoder allocates. Exceeding the cap is reported as
// qoserr.ErrAllocation.
//
// # Struct Tag Rules
//
// Types here carry `json` tags only. fxamacker/cbor v2 reads `json` tags
// when `cbor` tags are absent, so one tag controls field naming for both
// the JSON snapshot format and CBOR. Never put both `cbor` and `json`
// tags on the same field.
package codec
