// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// EventKind identifies a monitoring event. The zero value is invalid.
type EventKind int

const (
	// EventLLCOccupancy is last-level cache occupancy.
	EventLLCOccupancy EventKind = iota + 1
	// EventLocalMemoryBandwidth is memory bandwidth to the local node.
	EventLocalMemoryBandwidth
	// EventTotalMemoryBandwidth is total memory bandwidth.
	EventTotalMemoryBandwidth
	// EventRemoteMemoryBandwidth is memory bandwidth to remote nodes
	// (total minus local).
	EventRemoteMemoryBandwidth
	// EventInstructionsPerCycle is derived from perf counters.
	EventInstructionsPerCycle
	// EventLLCMisses is last-level cache misses from perf counters.
	EventLLCMisses

	eventKindEnd
)

// Names follow the Linux resctrl mon_features file where one exists.
var eventNames = map[EventKind]string{
	EventLLCOccupancy:          "llc_occupancy",
	EventLocalMemoryBandwidth:  "mbm_local_bytes",
	EventTotalMemoryBandwidth:  "mbm_total_bytes",
	EventRemoteMemoryBandwidth: "mbm_remote_bytes",
	EventInstructionsPerCycle:  "ipc",
	EventLLCMisses:             "llc_misses",
}

// Valid reports whether e is a defined event kind.
func (e EventKind) Valid() bool {
	return e >= EventLLCOccupancy && e < eventKindEnd
}

func (e EventKind) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(e))
}

// ParseEventKind converts an event name (as in resctrl mon_features)
// into an EventKind.
func ParseEventKind(name string) (EventKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for kind, eventName := range eventNames {
		if eventName == normalized {
			return kind, nil
		}
	}
	return 0, qoserr.Parameter("capability.ParseEventKind", "unknown event %q", name)
}

// MarshalText renders the event name.
func (e EventKind) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("capability: cannot marshal invalid event kind %d", int(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText parses an event name.
func (e *EventKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEventKind(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Event describes one supported monitoring event.
type Event struct {
	Kind EventKind `json:"kind" yaml:"kind"`

	// MaxRMID is the number of monitoring ids usable with this event.
	MaxRMID uint32 `json:"max_rmid" yaml:"max_rmid"`

	// ScaleFactor converts raw counter values to bytes.
	ScaleFactor uint32 `json:"scale_factor,omitempty" yaml:"scale_factor,omitempty"`

	// CounterLength is the hardware counter width in bits.
	CounterLength uint32 `json:"counter_length,omitempty" yaml:"counter_length,omitempty"`
}
