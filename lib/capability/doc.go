// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capability answers "does this platform support feature F, and
// with what parameters" over a registry of platform QoS capabilities
// captured once at discovery time.
//
// A [Capability] is a closed sum type: the only implementations are
// [*Monitoring], [*L3CacheAllocation], [*L2CacheAllocation] and
// [*MemoryBandwidthAllocation]. Lookups are type switches over those
// four variants; code outside this package cannot add more.
//
// Absence is reported two ways and callers are expected to tell them
// apart:
//
//   - qoserr.ErrNotSupported: the registry has no capability of the
//     requested kind. This is a normal outcome on hardware without the
//     feature; callers skip the feature.
//   - qoserr.ErrNotFound: the capability exists but does not offer the
//     specific monitoring event asked for.
//
// A [Registry] is never modified by this package. Lookups return
// pointers into the registry so repeated calls yield the same values;
// callers must treat them as read-only.
package capability
