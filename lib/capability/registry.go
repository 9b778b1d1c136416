// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// Registry is the set of capabilities a platform offers. Immutable after
// construction; safe for concurrent readers.
type Registry struct {
	// Capabilities holds at most one entry per kind. When a hand-built
	// registry repeats a kind, lookups return the first entry.
	Capabilities []Capability
}

// NewRegistry builds a Registry from capabilities. Returns
// qoserr.ErrParameter for a nil entry, a repeated kind, or a monitoring
// capability that lists the same event twice.
func NewRegistry(capabilities ...Capability) (*Registry, error) {
	const op = "capability.NewRegistry"

	var seen [kindCount]bool
	for position, item := range capabilities {
		if isNil(item) {
			return nil, qoserr.Parameter(op, "capability %d is nil", position)
		}
		kind := item.Kind()
		if seen[kind] {
			return nil, qoserr.Parameter(op, "duplicate %s capability", kind)
		}
		seen[kind] = true

		if monitoring, ok := item.(*Monitoring); ok {
			events := make(map[EventKind]bool, len(monitoring.Events))
			for _, event := range monitoring.Events {
				if !event.Kind.Valid() {
					return nil, qoserr.Parameter(op, "invalid monitoring event kind %d", int(event.Kind))
				}
				if events[event.Kind] {
					return nil, qoserr.Parameter(op, "duplicate monitoring event %s", event.Kind)
				}
				events[event.Kind] = true
			}
		}
	}

	return &Registry{Capabilities: append([]Capability(nil), capabilities...)}, nil
}

// FindByKind returns the first capability of the given kind.
// qoserr.ErrNotSupported means the platform lacks the capability;
// qoserr.ErrParameter means the registry is nil or kind is invalid.
func (r *Registry) FindByKind(kind Kind) (Capability, error) {
	return r.findByKind("capability.FindByKind", kind)
}

func (r *Registry) findByKind(op string, kind Kind) (Capability, error) {
	if r == nil {
		return nil, qoserr.Parameter(op, "registry is nil")
	}
	if !kind.Valid() {
		return nil, qoserr.Parameter(op, "invalid capability kind %d", int(kind))
	}
	for _, item := range r.Capabilities {
		if isNil(item) {
			continue
		}
		if item.Kind() == kind {
			return item, nil
		}
	}
	return nil, qoserr.NotSupported(op, "no %s capability", kind)
}

// Find returns the first capability of concrete type T:
//
//	l3, err := capability.Find[*capability.L3CacheAllocation](registry)
func Find[T Capability](r *Registry) (T, error) {
	const op = "capability.Find"
	var zero T
	if r == nil {
		return zero, qoserr.Parameter(op, "registry is nil")
	}
	for _, item := range r.Capabilities {
		if isNil(item) {
			continue
		}
		if typed, ok := item.(T); ok {
			return typed, nil
		}
	}
	return zero, qoserr.NotSupported(op, "no %T capability", zero)
}

// MonitoringEvent returns the descriptor of a monitoring event.
// qoserr.ErrNotSupported means there is no monitoring capability at all;
// qoserr.ErrNotFound means monitoring exists but lacks this event.
func (r *Registry) MonitoringEvent(event EventKind) (*Event, error) {
	const op = "capability.MonitoringEvent"
	if r == nil {
		return nil, qoserr.Parameter(op, "registry is nil")
	}
	if !event.Valid() {
		return nil, qoserr.Parameter(op, "invalid event kind %d", int(event))
	}

	item, err := r.findByKind(op, KindMonitoring)
	if err != nil {
		return nil, err
	}
	monitoring := item.(*Monitoring)
	for i := range monitoring.Events {
		if monitoring.Events[i].Kind == event {
			return &monitoring.Events[i], nil
		}
	}
	return nil, qoserr.NotFound(op, "event %s", event)
}

// ClassCount returns the number of classes of service of an allocation
// capability (KindL3CA, KindL2CA or KindMBA).
func (r *Registry) ClassCount(kind Kind) (uint32, error) {
	const op = "capability.ClassCount"
	if kind == KindMonitoring {
		return 0, qoserr.Parameter(op, "%s has no classes of service", kind)
	}

	item, err := r.findByKind(op, kind)
	if err != nil {
		return 0, err
	}
	switch allocation := item.(type) {
	case *L3CacheAllocation:
		return allocation.NumClasses, nil
	case *L2CacheAllocation:
		return allocation.NumClasses, nil
	case *MemoryBandwidthAllocation:
		return allocation.NumClasses, nil
	}
	return 0, qoserr.Parameter(op, "%s has no classes of service", kind)
}

// CDPState is the code/data prioritization status of a cache
// allocation capability.
type CDPState struct {
	Capable bool `json:"capable"`
	Enabled bool `json:"enabled"`
}

// CDPStatus reads code/data prioritization flags of a cache allocation
// capability (KindL3CA or KindL2CA) into whichever of capable and
// enabled are non-nil. Passing both as nil is qoserr.ErrParameter.
func (r *Registry) CDPStatus(kind Kind, capable, enabled *bool) error {
	const op = "capability.CDPStatus"
	if capable == nil && enabled == nil {
		return qoserr.Parameter(op, "neither capable nor enabled requested")
	}
	if kind != KindL3CA && kind != KindL2CA {
		return qoserr.Parameter(op, "%s is not a cache allocation capability", kind)
	}

	item, err := r.findByKind(op, kind)
	if err != nil {
		return err
	}

	var allocation *CacheAllocation
	switch typed := item.(type) {
	case *L3CacheAllocation:
		allocation = &typed.CacheAllocation
	case *L2CacheAllocation:
		allocation = &typed.CacheAllocation
	}
	if capable != nil {
		*capable = allocation.CDPCapable
	}
	if enabled != nil {
		*enabled = allocation.CDPEnabled
	}
	return nil
}

// CDP returns both code/data prioritization flags of a cache allocation
// capability.
func (r *Registry) CDP(kind Kind) (CDPState, error) {
	var state CDPState
	err := r.CDPStatus(kind, &state.Capable, &state.Enabled)
	return state, err
}
