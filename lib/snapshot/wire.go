// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"

	"github.com/bureau-foundation/pqos/lib/capability"
)

// WireCapability is the serialized form of one capability: a kind tag
// and exactly one populated payload matching it.
type WireCapability struct {
	Kind capability.Kind `json:"kind" yaml:"kind"`

	Monitoring *capability.Monitoring                `json:"monitoring,omitempty" yaml:"monitoring,omitempty"`
	L3CA       *capability.L3CacheAllocation         `json:"l3ca,omitempty" yaml:"l3ca,omitempty"`
	L2CA       *capability.L2CacheAllocation         `json:"l2ca,omitempty" yaml:"l2ca,omitempty"`
	MBA        *capability.MemoryBandwidthAllocation `json:"mba,omitempty" yaml:"mba,omitempty"`
}

func toWire(item capability.Capability) (WireCapability, error) {
	switch typed := item.(type) {
	case *capability.Monitoring:
		if typed != nil {
			return WireCapability{Kind: capability.KindMonitoring, Monitoring: typed}, nil
		}
	case *capability.L3CacheAllocation:
		if typed != nil {
			return WireCapability{Kind: capability.KindL3CA, L3CA: typed}, nil
		}
	case *capability.L2CacheAllocation:
		if typed != nil {
			return WireCapability{Kind: capability.KindL2CA, L2CA: typed}, nil
		}
	case *capability.MemoryBandwidthAllocation:
		if typed != nil {
			return WireCapability{Kind: capability.KindMBA, MBA: typed}, nil
		}
	}
	return WireCapability{}, fmt.Errorf("cannot serialize capability %T", item)
}

// capability returns the payload selected by Kind, rejecting entries
// whose other payloads are also set.
func (w WireCapability) capability() (capability.Capability, error) {
	populated := 0
	for _, present := range []bool{w.Monitoring != nil, w.L3CA != nil, w.L2CA != nil, w.MBA != nil} {
		if present {
			populated++
		}
	}
	if populated != 1 {
		return nil, fmt.Errorf("%s entry has %d payloads, want 1", w.Kind, populated)
	}

	var item capability.Capability
	switch w.Kind {
	case capability.KindMonitoring:
		if w.Monitoring != nil {
			item = w.Monitoring
		}
	case capability.KindL3CA:
		if w.L3CA != nil {
			item = w.L3CA
		}
	case capability.KindL2CA:
		if w.L2CA != nil {
			item = w.L2CA
		}
	case capability.KindMBA:
		if w.MBA != nil {
			item = w.MBA
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%s entry carries a payload of another kind", w.Kind)
	}
	return item, nil
}
