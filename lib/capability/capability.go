// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/pqos/lib/qoserr"
)

// Kind identifies a capability category.
type Kind int

const (
	// KindMonitoring is resource monitoring (cache occupancy, memory
	// bandwidth counters).
	KindMonitoring Kind = iota
	// KindL3CA is L3 cache allocation.
	KindL3CA
	// KindL2CA is L2 cache allocation.
	KindL2CA
	// KindMBA is memory bandwidth allocation.
	KindMBA

	kindCount
)

var kindNames = [kindCount]string{
	KindMonitoring: "mon",
	KindL3CA:       "l3ca",
	KindL2CA:       "l2ca",
	KindMBA:        "mba",
}

// Valid reports whether k is a defined capability kind.
func (k Kind) Valid() bool {
	return k >= KindMonitoring && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a name produced by String back into a Kind.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for kind, kindName := range kindNames {
		if kindName == normalized {
			return Kind(kind), nil
		}
	}
	return 0, qoserr.Parameter("capability.ParseKind",
		"unknown capability kind %q (want mon, l3ca, l2ca or mba)", name)
}

// MarshalText renders the kind name so JSON, YAML and CBOR carry
// "l3ca" rather than an ordinal.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("capability: cannot marshal invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Capability is one platform feature with its parameters. Implemented
// only by the pointer types in this package.
type Capability interface {
	// Kind returns the capability category. Safe on a nil receiver.
	Kind() Kind

	capability()
}

// Monitoring describes resource monitoring support.
type Monitoring struct {
	// MaxRMID is the number of resource monitoring ids.
	MaxRMID uint32 `json:"max_rmid" yaml:"max_rmid"`

	// L3Size is the L3 cache size in bytes, used to scale occupancy.
	L3Size uint32 `json:"l3_size,omitempty" yaml:"l3_size,omitempty"`

	// Events lists the supported events. Event kinds are unique.
	Events []Event `json:"events" yaml:"events"`
}

// CacheAllocation holds the parameters shared by L2 and L3 cache
// allocation.
type CacheAllocation struct {
	// NumClasses is the number of classes of service.
	NumClasses uint32 `json:"num_classes" yaml:"num_classes"`

	// NumWays is the number of cache ways a class bitmask can select.
	NumWays uint32 `json:"num_ways" yaml:"num_ways"`

	// WaySize is the size of one cache way in bytes.
	WaySize uint32 `json:"way_size,omitempty" yaml:"way_size,omitempty"`

	// WayContention is the bitmask of ways shared with other agents
	// (e.g., I/O).
	WayContention uint64 `json:"way_contention,omitempty" yaml:"way_contention,omitempty"`

	// CDPCapable reports hardware support for code/data prioritization.
	CDPCapable bool `json:"cdp_capable" yaml:"cdp_capable"`

	// CDPEnabled reports whether code/data prioritization is turned on.
	CDPEnabled bool `json:"cdp_enabled" yaml:"cdp_enabled"`
}

// L3CacheAllocation describes L3 cache allocation support.
type L3CacheAllocation struct {
	CacheAllocation `yaml:",inline"`
}

// L2CacheAllocation describes L2 cache allocation support.
type L2CacheAllocation struct {
	CacheAllocation `yaml:",inline"`
}

// MemoryBandwidthAllocation describes memory bandwidth throttling.
type MemoryBandwidthAllocation struct {
	// NumClasses is the number of classes of service.
	NumClasses uint32 `json:"num_classes" yaml:"num_classes"`

	// ThrottleMax is the largest throttle value, in percent.
	ThrottleMax uint32 `json:"throttle_max" yaml:"throttle_max"`

	// ThrottleStep is the throttle granularity, in percent.
	ThrottleStep uint32 `json:"throttle_step" yaml:"throttle_step"`

	// Linear reports whether throttle values scale linearly.
	Linear bool `json:"linear" yaml:"linear"`
}

func (*Monitoring) Kind() Kind                { return KindMonitoring }
func (*L3CacheAllocation) Kind() Kind         { return KindL3CA }
func (*L2CacheAllocation) Kind() Kind         { return KindL2CA }
func (*MemoryBandwidthAllocation) Kind() Kind { return KindMBA }

func (*Monitoring) capability()                {}
func (*L3CacheAllocation) capability()         {}
func (*L2CacheAllocation) capability()         {}
func (*MemoryBandwidthAllocation) capability() {}

// isNil reports whether c is a nil interface or a typed nil pointer.
func isNil(c Capability) bool {
	switch value := c.(type) {
	case nil:
		return true
	case *Monitoring:
		return value == nil
	case *L3CacheAllocation:
		return value == nil
	case *L2CacheAllocation:
		return value == nil
	case *MemoryBandwidthAllocation:
		return value == nil
	}
	return false
}
