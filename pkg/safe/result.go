package safe

import "encoding/json"

// Direction classifies how a feature behaves in a node's neighborhood
// relative to the permutation baseline.
type Direction int

const (
	// DirectionNone means neither direction reached a smaller p-value
	// (exact tie between enrichment and depletion).
	DirectionNone Direction = iota
	// DirectionEnriched means the observed aggregate exceeds the null more
	// often than random placement explains.
	DirectionEnriched
	// DirectionDepleted is the symmetric case under the null.
	DirectionDepleted
	// DirectionUndefined marks cells of a degenerate feature. Undefined
	// cells carry no usable p-value and are never significant.
	DirectionUndefined
)

var directionNames = map[Direction]string{
	DirectionNone:      "neither",
	DirectionEnriched:  "enriched",
	DirectionDepleted:  "depleted",
	DirectionUndefined: "undefined",
}

// String returns the export label for the direction.
func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return "unknown"
}

// MarshalJSON encodes the direction as its export label.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a direction from its export label.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for dir, name := range directionNames {
		if name == s {
			*d = dir
			return nil
		}
	}
	*d = DirectionUndefined
	return nil
}

// Cell holds the enrichment outcome for one (node, feature) pair.
type Cell struct {
	// Observed is the aggregate of the feature over the node's neighborhood
	// under the real (unpermuted) assignment.
	Observed float64 `json:"observed" bson:"observed"`
	// PEnrich is the continuity-corrected fraction of null scores >= Observed.
	PEnrich float64 `json:"p_enrich" bson:"p_enrich"`
	// PDeplete is the continuity-corrected fraction of null scores <= Observed.
	PDeplete float64 `json:"p_deplete" bson:"p_deplete"`
	// P is the smaller of the two directional p-values; the FDR correction
	// runs on this value. Always in (0, 1] for well-formed features.
	P float64 `json:"p" bson:"p"`
	// Q is the Benjamini-Hochberg adjusted p-value, set by Correct.
	Q float64 `json:"q,omitempty" bson:"q,omitempty"`
	// Score is the normalized enrichment score log10(P) / log10(pmin) where
	// pmin = 1/(permutations+1). It lies in [0, 1]; 1 marks a cell at the
	// continuity-corrected minimum.
	Score float64 `json:"score" bson:"score"`
	// Direction classifies the cell; undefined for degenerate features.
	Direction Direction `json:"direction" bson:"direction"`
	// Significant is true when Q passed the alpha threshold, set by Correct.
	Significant bool `json:"significant" bson:"significant"`
}

// Result is the enrichment matrix for one scoring run. Cells are indexed
// [feature][node] following the orders in Features and NodeIDs. Once Score
// returns, the result is immutable; Correct returns an adjusted copy.
type Result struct {
	// NodeIDs holds the node identifiers sorted lexicographically.
	NodeIDs []string `json:"node_ids" bson:"node_ids"`
	// Features holds feature names in matrix column order.
	Features []string `json:"features" bson:"features"`
	// Cells is the (feature x node) outcome matrix. A nil row marks a
	// feature whose scoring was cancelled before completion.
	Cells [][]Cell `json:"cells" bson:"cells"`
	// Degenerate lists features skipped for having fewer than two distinct
	// values, in feature order.
	Degenerate []string `json:"degenerate,omitempty" bson:"degenerate,omitempty"`
	// Permutations is the null-model size used.
	Permutations int `json:"permutations" bson:"permutations"`
	// Seed is the run seed actually used; recorded even when drawn fresh so
	// a run can be reproduced exactly.
	Seed uint64 `json:"seed" bson:"seed"`
	// Alpha is the significance level applied by Correct, zero before.
	Alpha float64 `json:"alpha,omitempty" bson:"alpha,omitempty"`
	// Corrected is true once Correct has filled Q and Significant.
	Corrected bool `json:"corrected" bson:"corrected"`

	nodeIndex    map[string]int
	featureIndex map[string]int
}

// buildIndex populates the lookup maps. Called by Score and after decoding.
func (r *Result) buildIndex() {
	r.nodeIndex = make(map[string]int, len(r.NodeIDs))
	for i, id := range r.NodeIDs {
		r.nodeIndex[id] = i
	}
	r.featureIndex = make(map[string]int, len(r.Features))
	for i, name := range r.Features {
		r.featureIndex[name] = i
	}
}

// Cell returns the outcome for the given node and feature.
// The second return is false when either identifier is unknown or the
// feature's scoring did not complete.
func (r *Result) Cell(nodeID, featureName string) (Cell, bool) {
	if r.nodeIndex == nil {
		r.buildIndex()
	}
	i, ok := r.nodeIndex[nodeID]
	if !ok {
		return Cell{}, false
	}
	j, ok := r.featureIndex[featureName]
	if !ok || r.Cells[j] == nil {
		return Cell{}, false
	}
	return r.Cells[j][i], true
}

// IsDegenerate reports whether the named feature was skipped as degenerate.
func (r *Result) IsDegenerate(featureName string) bool {
	for _, f := range r.Degenerate {
		if f == featureName {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the result with fresh cell storage.
func (r *Result) Clone() *Result {
	out := &Result{
		NodeIDs:      append([]string(nil), r.NodeIDs...),
		Features:     append([]string(nil), r.Features...),
		Cells:        make([][]Cell, len(r.Cells)),
		Degenerate:   append([]string(nil), r.Degenerate...),
		Permutations: r.Permutations,
		Seed:         r.Seed,
		Alpha:        r.Alpha,
		Corrected:    r.Corrected,
	}
	for j, row := range r.Cells {
		if row != nil {
			out.Cells[j] = append([]Cell(nil), row...)
		}
	}
	return out
}
