// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want %v", err, kind)
	}
}

// fullRegistry models a server with monitoring, L3 CAT with CDP on, L2
// CAT without CDP, and MBA.
func fullRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(
		&Monitoring{
			MaxRMID: 224,
			L3Size:  40 * 1024 * 1024,
			Events: []Event{
				{Kind: EventLLCOccupancy, MaxRMID: 224, ScaleFactor: 65536},
				{Kind: EventLocalMemoryBandwidth, MaxRMID: 224, ScaleFactor: 65536, CounterLength: 24},
				{Kind: EventTotalMemoryBandwidth, MaxRMID: 224, ScaleFactor: 65536, CounterLength: 24},
			},
		},
		&L3CacheAllocation{CacheAllocation{NumClasses: 8, NumWays: 11, CDPCapable: true, CDPEnabled: true}},
		&L2CacheAllocation{CacheAllocation{NumClasses: 4, NumWays: 8, CDPCapable: true}},
		&MemoryBandwidthAllocation{NumClasses: 8, ThrottleMax: 90, ThrottleStep: 10, Linear: true},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return registry
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name         string
		capabilities []Capability
	}{
		{"nil entry", []Capability{nil}},
		{"typed nil entry", []Capability{(*L3CacheAllocation)(nil)}},
		{"duplicate kind", []Capability{&MemoryBandwidthAllocation{}, &MemoryBandwidthAllocation{}}},
		{"duplicate event", []Capability{&Monitoring{Events: []Event{
			{Kind: EventLLCOccupancy}, {Kind: EventLLCOccupancy},
		}}}},
		{"invalid event", []Capability{&Monitoring{Events: []Event{{}}}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewRegistry(test.capabilities...)
			requireKind(t, err, qoserr.ErrParameter)
		})
	}

	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() with no capabilities: %v", err)
	}
	_, err = registry.FindByKind(KindL3CA)
	requireKind(t, err, qoserr.ErrNotSupported)
}

func TestFindByKind_SameReference(t *testing.T) {
	registry := fullRegistry(t)
	for kind := range kindCount {
		first, err := registry.FindByKind(kind)
		if err != nil {
			t.Fatalf("FindByKind(%s): %v", kind, err)
		}
		second, err := registry.FindByKind(kind)
		if err != nil {
			t.Fatalf("FindByKind(%s): %v", kind, err)
		}
		if first != second {
			t.Errorf("FindByKind(%s) returned different references", kind)
		}
		if first.Kind() != kind {
			t.Errorf("FindByKind(%s) returned a %s capability", kind, first.Kind())
		}
	}
}

func TestFindByKind_Errors(t *testing.T) {
	registry := &Registry{Capabilities: []Capability{&L3CacheAllocation{}}}

	_, err := registry.FindByKind(KindMBA)
	requireKind(t, err, qoserr.ErrNotSupported)
	if errors.Is(err, qoserr.ErrNotFound) {
		t.Errorf("missing capability reported as not found: %v", err)
	}

	_, err = registry.FindByKind(Kind(12))
	requireKind(t, err, qoserr.ErrParameter)

	var nilRegistry *Registry
	_, err = nilRegistry.FindByKind(KindL3CA)
	requireKind(t, err, qoserr.ErrParameter)
}

func TestFindByKind_FirstMatchWins(t *testing.T) {
	first := &L2CacheAllocation{CacheAllocation{NumClasses: 4}}
	registry := &Registry{Capabilities: []Capability{
		nil,
		(*Monitoring)(nil),
		first,
		&L2CacheAllocation{CacheAllocation{NumClasses: 16}},
	}}

	found, err := registry.FindByKind(KindL2CA)
	if err != nil {
		t.Fatalf("FindByKind: %v", err)
	}
	if found != Capability(first) {
		t.Errorf("FindByKind returned %+v, want the first L2 entry", found)
	}

	_, err = registry.FindByKind(KindMonitoring)
	requireKind(t, err, qoserr.ErrNotSupported)
}

func TestFind_Typed(t *testing.T) {
	registry := fullRegistry(t)

	l3, err := Find[*L3CacheAllocation](registry)
	if err != nil {
		t.Fatalf("Find[*L3CacheAllocation]: %v", err)
	}
	if l3.NumWays != 11 {
		t.Errorf("NumWays = %d, want 11", l3.NumWays)
	}

	sparse := &Registry{Capabilities: []Capability{&Monitoring{}}}
	_, err = Find[*MemoryBandwidthAllocation](sparse)
	requireKind(t, err, qoserr.ErrNotSupported)

	_, err = Find[*Monitoring](nil)
	requireKind(t, err, qoserr.ErrParameter)
}

func TestMonitoringEvent(t *testing.T) {
	registry := fullRegistry(t)

	event, err := registry.MonitoringEvent(EventLocalMemoryBandwidth)
	if err != nil {
		t.Fatalf("MonitoringEvent: %v", err)
	}
	want := Event{Kind: EventLocalMemoryBandwidth, MaxRMID: 224, ScaleFactor: 65536, CounterLength: 24}
	if diff := cmp.Diff(want, *event); diff != "" {
		t.Errorf("MonitoringEvent mismatch (-want +got):\n%s", diff)
	}

	again, _ := registry.MonitoringEvent(EventLocalMemoryBandwidth)
	if again != event {
		t.Errorf("MonitoringEvent returned different references")
	}

	_, err = registry.MonitoringEvent(EventRemoteMemoryBandwidth)
	requireKind(t, err, qoserr.ErrNotFound)

	_, err = registry.MonitoringEvent(EventKind(0))
	requireKind(t, err, qoserr.ErrParameter)
}

func TestMonitoringEvent_NoMonitoringIsNotSupported(t *testing.T) {
	registry := &Registry{Capabilities: []Capability{
		&L3CacheAllocation{CacheAllocation{NumClasses: 16}},
	}}

	_, err := registry.MonitoringEvent(EventLLCOccupancy)
	requireKind(t, err, qoserr.ErrNotSupported)
	if errors.Is(err, qoserr.ErrNotFound) {
		t.Errorf("absent monitoring reported as not found: %v", err)
	}
}

func TestClassCount(t *testing.T) {
	registry := fullRegistry(t)

	tests := []struct {
		kind Kind
		want uint32
	}{
		{KindL3CA, 8},
		{KindL2CA, 4},
		{KindMBA, 8},
	}
	for _, test := range tests {
		got, err := registry.ClassCount(test.kind)
		if err != nil {
			t.Errorf("ClassCount(%s): %v", test.kind, err)
			continue
		}
		if got != test.want {
			t.Errorf("ClassCount(%s) = %d, want %d", test.kind, got, test.want)
		}
	}

	_, err := registry.ClassCount(KindMonitoring)
	requireKind(t, err, qoserr.ErrParameter)

	sparse := &Registry{Capabilities: []Capability{&Monitoring{}}}
	_, err = sparse.ClassCount(KindL3CA)
	requireKind(t, err, qoserr.ErrNotSupported)
}

func TestCDPStatus(t *testing.T) {
	registry := fullRegistry(t)

	t.Run("both requested", func(t *testing.T) {
		state, err := registry.CDP(KindL3CA)
		if err != nil {
			t.Fatalf("CDP(l3ca): %v", err)
		}
		if diff := cmp.Diff(CDPState{Capable: true, Enabled: true}, state); diff != "" {
			t.Errorf("CDP(l3ca) mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("only capable requested", func(t *testing.T) {
		capable := false
		if err := registry.CDPStatus(KindL2CA, &capable, nil); err != nil {
			t.Fatalf("CDPStatus: %v", err)
		}
		if !capable {
			t.Errorf("L2 CDP capable = false, want true")
		}
	})

	t.Run("only enabled requested", func(t *testing.T) {
		enabled := true
		if err := registry.CDPStatus(KindL2CA, nil, &enabled); err != nil {
			t.Fatalf("CDPStatus: %v", err)
		}
		if enabled {
			t.Errorf("L2 CDP enabled = true, want false")
		}
	})

	t.Run("neither requested", func(t *testing.T) {
		requireKind(t, registry.CDPStatus(KindL3CA, nil, nil), qoserr.ErrParameter)
	})

	t.Run("not a cache allocation kind", func(t *testing.T) {
		var capable bool
		requireKind(t, registry.CDPStatus(KindMBA, &capable, nil), qoserr.ErrParameter)
	})

	t.Run("capability missing", func(t *testing.T) {
		sparse := &Registry{Capabilities: []Capability{&L2CacheAllocation{}}}
		_, err := sparse.CDP(KindL3CA)
		requireKind(t, err, qoserr.ErrNotSupported)
	})
}

func TestKindNames(t *testing.T) {
	for kind := range kindCount {
		parsed, err := ParseKind(kind.String())
		if err != nil || parsed != kind {
			t.Errorf("ParseKind(%q) = %s, %v", kind.String(), parsed, err)
		}
	}
	_, err := ParseKind("cat")
	requireKind(t, err, qoserr.ErrParameter)

	for event := EventLLCOccupancy; event < eventKindEnd; event++ {
		parsed, err := ParseEventKind(event.String())
		if err != nil || parsed != event {
			t.Errorf("ParseEventKind(%q) = %s, %v", event.String(), parsed, err)
		}
	}
	_, err = ParseEventKind("bogus")
	requireKind(t, err, qoserr.ErrParameter)
}

func TestKind_TextRoundTrip(t *testing.T) {
	text, err := KindMBA.MarshalText()
	if err != nil || string(text) != "mba" {
		t.Fatalf("MarshalText = %q, %v", text, err)
	}
	var kind Kind
	if err := kind.UnmarshalText([]byte("l2ca")); err != nil || kind != KindL2CA {
		t.Errorf("UnmarshalText(l2ca) = %s, %v", kind, err)
	}
	if _, err := Kind(9).MarshalText(); err == nil {
		t.Errorf("MarshalText accepted invalid kind")
	}
}
