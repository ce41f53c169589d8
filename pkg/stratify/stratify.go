// Package stratify partitions graph nodes by their single most
// significantly enriched feature.
//
// The assignment consumes a corrected enrichment result: for each node, the
// dominant feature is the significant one with the most extreme adjusted
// p-value. Nodes where nothing passes the threshold receive the reserved
// [LabelNone] sentinel. The partition is deterministic: exact p-value ties
// resolve to the first-listed feature.
package stratify

import (
	"maps"
	"slices"

	"github.com/mhalvorsen/enrichmap/pkg/safe"
)

// LabelNone is the reserved stratum label for nodes with no significant
// feature. It is never a real feature name.
const LabelNone = "none"

// Assignment maps every node to its dominant feature label.
type Assignment struct {
	// Labels maps node ID to the dominant feature name or LabelNone.
	Labels map[string]string `json:"labels" bson:"labels"`
	// Alpha records the significance level of the corrected input.
	Alpha float64 `json:"alpha" bson:"alpha"`
}

// Assign selects the dominant feature per node from a corrected result.
// Dominance order: smallest q-value, then smallest raw p-value, then
// feature input order. Degenerate and unscored features never dominate.
//
// Assign panics only on programmer error; an uncorrected result yields an
// all-none assignment since nothing is marked significant.
func Assign(r *safe.Result) *Assignment {
	a := &Assignment{
		Labels: make(map[string]string, len(r.NodeIDs)),
		Alpha:  r.Alpha,
	}
	for i, node := range r.NodeIDs {
		best := -1
		for j := range r.Features {
			if r.Cells[j] == nil {
				continue
			}
			cell := r.Cells[j][i]
			if !cell.Significant || cell.Direction == safe.DirectionUndefined {
				continue
			}
			if best == -1 || dominates(cell, r.Cells[best][i]) {
				best = j
			}
		}
		if best == -1 {
			a.Labels[node] = LabelNone
		} else {
			a.Labels[node] = r.Features[best]
		}
	}
	return a
}

// dominates reports whether candidate should replace current as the
// dominant cell. Strict inequalities keep the first-listed feature on exact
// ties.
func dominates(candidate, current safe.Cell) bool {
	if candidate.Q != current.Q {
		return candidate.Q < current.Q
	}
	return candidate.P < current.P
}

// Label returns the stratum label for a node, or LabelNone for unknown
// nodes.
func (a *Assignment) Label(nodeID string) string {
	if label, ok := a.Labels[nodeID]; ok {
		return label
	}
	return LabelNone
}

// Strata groups node IDs per label. Node lists are sorted; the map includes
// the LabelNone stratum when present.
func (a *Assignment) Strata() map[string][]string {
	out := make(map[string][]string)
	for node, label := range a.Labels {
		out[label] = append(out[label], node)
	}
	for _, nodes := range out {
		slices.Sort(nodes)
	}
	return out
}

// StratumLabels returns the distinct labels in the assignment sorted, with
// LabelNone last when present.
func (a *Assignment) StratumLabels() []string {
	seen := make(map[string]bool)
	for _, label := range a.Labels {
		seen[label] = true
	}
	hasNone := seen[LabelNone]
	delete(seen, LabelNone)
	labels := slices.Sorted(maps.Keys(seen))
	if hasNone {
		labels = append(labels, LabelNone)
	}
	return labels
}
