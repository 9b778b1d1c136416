// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/pqos/lib/capability"
	"github.com/bureau-foundation/pqos/lib/codec"
	"github.com/bureau-foundation/pqos/lib/qoserr"
	"github.com/bureau-foundation/pqos/lib/topology"
	"github.com/bureau-foundation/pqos/lib/version"
)

// FormatVersion is the snapshot schema version. Decode rejects any
// other value.
const FormatVersion = 1

// DefaultMaxElements bounds the number of cores, capabilities and
// monitoring events a decoded snapshot may contain when the caller
// passes a non-positive limit.
const DefaultMaxElements = 16384

// Snapshot is a serializable topology and capability registry.
type Snapshot struct {
	FormatVersion int    `json:"format_version" yaml:"format_version"`
	Producer      string `json:"producer" yaml:"producer"`

	// Fingerprint is the hex BLAKE3 digest of the CBOR encoding of
	// Cores and Capabilities.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	Cores        []topology.CoreRecord `json:"cores" yaml:"cores"`
	Capabilities []WireCapability      `json:"capabilities" yaml:"capabilities"`

	topology *topology.Topology
	registry *capability.Registry
}

// New captures t and r. A nil registry is recorded as having no
// capabilities.
func New(t *topology.Topology, r *capability.Registry) (*Snapshot, error) {
	const op = "snapshot.New"
	if t == nil || t.Len() == 0 {
		return nil, qoserr.Parameter(op, "topology is nil or empty")
	}
	if r == nil {
		r = &capability.Registry{}
	}

	snapshot := &Snapshot{
		FormatVersion: FormatVersion,
		Producer:      version.Short(),
		Cores:         append([]topology.CoreRecord(nil), t.Cores...),
		topology:      t,
		registry:      r,
	}
	for _, item := range r.Capabilities {
		wire, err := toWire(item)
		if err != nil {
			return nil, &qoserr.Error{Op: op, Kind: qoserr.ErrParameter, Detail: err.Error()}
		}
		snapshot.Capabilities = append(snapshot.Capabilities, wire)
	}

	fingerprint, err := snapshot.computeFingerprint()
	if err != nil {
		return nil, err
	}
	snapshot.Fingerprint = fingerprint
	return snapshot, nil
}

// Topology returns the topology the snapshot was built from or decoded
// into.
func (s *Snapshot) Topology() *topology.Topology {
	return s.topology
}

// Registry returns the capability registry the snapshot was built from
// or decoded into.
func (s *Snapshot) Registry() *capability.Registry {
	return s.registry
}

// fingerprintPayload is the subset of a snapshot covered by the
// fingerprint. Producer and format version are excluded so that
// re-saving with a newer binary keeps the same fingerprint.
type fingerprintPayload struct {
	Cores        []topology.CoreRecord `json:"cores"`
	Capabilities []WireCapability      `json:"capabilities"`
}

// computeFingerprint hashes the snapshot contents. Empty and absent
// lists hash identically, since YAML and hand-written JSON do not
// preserve the distinction.
func (s *Snapshot) computeFingerprint() (string, error) {
	payload := fingerprintPayload{Cores: s.Cores}
	for _, wire := range s.Capabilities {
		if wire.Monitoring != nil && len(wire.Monitoring.Events) == 0 {
			monitoring := *wire.Monitoring
			monitoring.Events = nil
			wire.Monitoring = &monitoring
		}
		payload.Capabilities = append(payload.Capabilities, wire)
	}

	data, err := codec.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot for fingerprint: %w", err)
	}
	digest := blake3.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}

// restore checks the decoded fields and rebuilds the topology and
// registry.
func (s *Snapshot) restore(limit int) error {
	const op = "snapshot.Decode"

	if s.FormatVersion != FormatVersion {
		return qoserr.Parameter(op, "unsupported format version %d (want %d)", s.FormatVersion, FormatVersion)
	}
	if err := checkLimit(op, s, limit); err != nil {
		return err
	}

	fingerprint, err := s.computeFingerprint()
	if err != nil {
		return err
	}
	if fingerprint != s.Fingerprint {
		return qoserr.Parameter(op, "fingerprint mismatch: recorded %s, computed %s", s.Fingerprint, fingerprint)
	}

	topo, err := topology.New(s.Cores)
	if err != nil {
		return err
	}
	capabilities := make([]capability.Capability, 0, len(s.Capabilities))
	for position, wire := range s.Capabilities {
		item, err := wire.capability()
		if err != nil {
			return qoserr.Parameter(op, "capability %d: %v", position, err)
		}
		capabilities = append(capabilities, item)
	}
	registry, err := capability.NewRegistry(capabilities...)
	if err != nil {
		return err
	}

	s.topology = topo
	s.registry = registry
	return nil
}

// checkLimit enforces the element bound for encodings whose decoders
// cannot enforce it themselves.
func checkLimit(op string, s *Snapshot, limit int) error {
	if len(s.Cores) > limit {
		return qoserr.New(op, qoserr.ErrAllocation, "%d cores exceed limit %d", len(s.Cores), limit)
	}
	if len(s.Capabilities) > limit {
		return qoserr.New(op, qoserr.ErrAllocation, "%d capabilities exceed limit %d", len(s.Capabilities), limit)
	}
	for _, wire := range s.Capabilities {
		if wire.Monitoring != nil && len(wire.Monitoring.Events) > limit {
			return qoserr.New(op, qoserr.ErrAllocation, "%d monitoring events exceed limit %d",
				len(wire.Monitoring.Events), limit)
		}
	}
	return nil
}
