// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package topology

// Summary counts the cores and groups of a topology.
type Summary struct {
	Cores      int `json:"cores"`
	Sockets    int `json:"sockets"`
	L2Clusters int `json:"l2_clusters"`
	L3Clusters int `json:"l3_clusters"`
}

// Summary returns core and group counts for t.
func (t *Topology) Summary() (Summary, error) {
	if err := t.check("topology.Summary"); err != nil {
		return Summary{}, err
	}
	return Summary{
		Cores:      len(t.Cores),
		Sockets:    countDistinct(t.Cores, Socket),
		L2Clusters: countDistinct(t.Cores, L2Cluster),
		L3Clusters: countDistinct(t.Cores, L3Cluster),
	}, nil
}
