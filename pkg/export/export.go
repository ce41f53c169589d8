// Package export flattens analysis outputs into serializable record sets
// and writes them as JSON, CSV, or Graphviz DOT text.
package export

import (
	"math"
	"sort"

	"github.com/mhalvorsen/enrichmap/pkg/ordination"
	"github.com/mhalvorsen/enrichmap/pkg/safe"
	"github.com/mhalvorsen/enrichmap/pkg/stratify"
)

// EnrichmentRecord is one (node, feature) outcome in flat form.
type EnrichmentRecord struct {
	NodeID      string  `json:"node_id"`
	Feature     string  `json:"feature"`
	Observed    float64 `json:"observed"`
	P           float64 `json:"p"`
	Q           float64 `json:"q"`
	Score       float64 `json:"score"`
	Direction   string  `json:"direction"`
	Significant bool    `json:"significant"`
}

// EnrichmentRecords flattens a result feature-major. Features whose scoring
// did not complete are skipped.
func EnrichmentRecords(r *safe.Result) []EnrichmentRecord {
	out := make([]EnrichmentRecord, 0, len(r.Features)*len(r.NodeIDs))
	for j, name := range r.Features {
		if r.Cells[j] == nil {
			continue
		}
		for i, id := range r.NodeIDs {
			c := r.Cells[j][i]
			out = append(out, EnrichmentRecord{
				NodeID:      id,
				Feature:     name,
				Observed:    c.Observed,
				P:           c.P,
				Q:           c.Q,
				Score:       c.Score,
				Direction:   c.Direction.String(),
				Significant: c.Significant,
			})
		}
	}
	return out
}

// StratumRecord maps one node to its dominant-feature label.
type StratumRecord struct {
	NodeID string `json:"node_id"`
	Label  string `json:"label"`
}

// StratumRecords flattens an assignment sorted by node ID.
func StratumRecords(a *stratify.Assignment) []StratumRecord {
	out := make([]StratumRecord, 0, len(a.Labels))
	for id, label := range a.Labels {
		out = append(out, StratumRecord{NodeID: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// OrdinationRecord is one embedded entity with its coordinates.
type OrdinationRecord struct {
	Entity      string    `json:"entity"`
	Coordinates []float64 `json:"coordinates"`
}

// OrdinationRecords flattens an embedding in entity order.
func OrdinationRecords(e *ordination.Embedding) []OrdinationRecord {
	out := make([]OrdinationRecord, len(e.Entities))
	for i, entity := range e.Entities {
		out[i] = OrdinationRecord{Entity: entity, Coordinates: e.Coordinates[i]}
	}
	return out
}

// FeatureRanking summarizes how strongly one feature structures the network.
type FeatureRanking struct {
	Feature string `json:"feature"`
	// SignificantNodes counts nodes where the feature passed correction.
	SignificantNodes int `json:"significant_nodes"`
	// MinQ is the smallest adjusted p-value across nodes, 1 when the
	// feature was never scored.
	MinQ float64 `json:"min_q"`
}

// RankFeatures orders features by significant-node count (descending), then
// by smallest adjusted p-value, then by name. Degenerate and incomplete
// features rank last among themselves by name.
func RankFeatures(r *safe.Result) []FeatureRanking {
	out := make([]FeatureRanking, 0, len(r.Features))
	for j, name := range r.Features {
		rank := FeatureRanking{Feature: name, MinQ: 1}
		if r.Cells[j] != nil && !r.IsDegenerate(name) {
			minQ := math.Inf(1)
			for _, c := range r.Cells[j] {
				if c.Significant {
					rank.SignificantNodes++
				}
				if c.Q < minQ {
					minQ = c.Q
				}
			}
			if !math.IsInf(minQ, 1) {
				rank.MinQ = minQ
			}
		}
		out = append(out, rank)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SignificantNodes != out[j].SignificantNodes {
			return out[i].SignificantNodes > out[j].SignificantNodes
		}
		if out[i].MinQ != out[j].MinQ {
			return out[i].MinQ < out[j].MinQ
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}
