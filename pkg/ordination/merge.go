package ordination

import (
	"slices"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/safe"
)

// Merge aligns two enrichment results onto the union of their nodes and the
// union of their features so they can be jointly projected. Cells absent
// from one input contribute nothing (p = 1, score 0, direction neither), so
// a merged embedding still contains every entity from both sides.
//
// The inputs must not share a feature name; a collision would make the
// merged cell ambiguous and is rejected with an INVALID_CONFIG error.
// Permutation counts and seeds may differ between the inputs and are not
// carried over; the merged result exists only for projection and reporting,
// not for further correction.
func Merge(a, b *safe.Result) (*safe.Result, error) {
	for _, name := range b.Features {
		if slices.Contains(a.Features, name) {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"feature %q present in both results", name)
		}
	}

	nodes := append([]string(nil), a.NodeIDs...)
	for _, id := range b.NodeIDs {
		if !slices.Contains(nodes, id) {
			nodes = append(nodes, id)
		}
	}
	slices.Sort(nodes)

	out := &safe.Result{
		NodeIDs:   nodes,
		Features:  make([]string, 0, len(a.Features)+len(b.Features)),
		Cells:     make([][]safe.Cell, 0, len(a.Features)+len(b.Features)),
		Alpha:     a.Alpha,
		Corrected: a.Corrected && b.Corrected,
	}
	appendRows(out, a, nodes)
	appendRows(out, b, nodes)
	return out, nil
}

// appendRows copies src's feature rows into dst, realigned to the merged
// node order. Incomplete rows stay nil so downstream consumers keep
// skipping them.
func appendRows(dst, src *safe.Result, nodes []string) {
	neutral := safe.Cell{PEnrich: 1, PDeplete: 1, P: 1, Q: 1, Direction: safe.DirectionNone}
	for j, name := range src.Features {
		dst.Features = append(dst.Features, name)
		if src.IsDegenerate(name) {
			dst.Degenerate = append(dst.Degenerate, name)
		}
		if src.Cells[j] == nil {
			dst.Cells = append(dst.Cells, nil)
			continue
		}
		row := make([]safe.Cell, len(nodes))
		for i, id := range nodes {
			if c, ok := src.Cell(id, name); ok {
				row[i] = c
			} else {
				row[i] = neutral
			}
		}
		dst.Cells = append(dst.Cells, row)
	}
}
