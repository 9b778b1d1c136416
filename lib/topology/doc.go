// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package topology answers read-only questions about a captured CPU
// topology: which sockets and cache clusters exist, which logical cores
// belong to each, whether a core id is valid, and which socket or L3
// cluster a core sits in.
//
// A [Topology] is an ordered list of [CoreRecord] values produced once
// by a discovery collaborator (see lib/hwinfo) and never modified
// afterwards. Nothing in this package writes to it, so any number of
// goroutines may query the same Topology concurrently as long as the
// producer does not mutate the Cores slice after handing it over.
//
// # Group kinds
//
// Sockets, L2 clusters and L3 clusters are all "groups" selected by one
// field of CoreRecord. Every grouping query takes a [GroupKind] and
// runs the same algorithm over the selected field.
//
// # Output conventions
//
// List-producing queries come in two forms:
//
//   - Allocating ([Topology.Groups], [Topology.CoresInGroup]): returns a
//     new slice owned by the caller.
//   - Buffer-filling ([Topology.FillGroups], [Topology.FillCoresInGroup],
//     [Topology.CoresOnSocket]): writes into a caller-supplied slice
//     whose length is the capacity. If the results do not fit, the call
//     fails with qoserr.ErrCapacity and the buffer is left untouched.
//
// All queries on [*Topology] are linear scans with no auxiliary state.
// [Index] answers the same queries from maps built once, for machines
// where core counts make repeated scans noticeable. Both satisfy
// [Querier] and return identical results and error kinds.
package topology
