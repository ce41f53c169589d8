package safe

import (
	"sort"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

// Correct applies a Benjamini-Hochberg false-discovery-rate adjustment to
// the result, independently per feature across all nodes' p-values. The
// per-feature scope avoids conflating p-value scales across features.
//
// The input result is left untouched; a corrected copy is returned with Q
// and Significant filled. Degenerate and unscored features are skipped and
// never marked significant.
//
// The significance mask is monotone in alpha: lowering alpha can only
// remove marks, never add them, for a fixed enrichment result.
func Correct(r *Result, alpha float64) (*Result, error) {
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	if err := errors.ValidateAlpha(alpha); err != nil {
		return nil, err
	}

	out := r.Clone()
	out.Alpha = alpha
	out.Corrected = true

	for j := range out.Cells {
		if out.Cells[j] == nil || out.IsDegenerate(out.Features[j]) {
			continue
		}
		adjustColumn(out.Cells[j], alpha)
	}
	out.buildIndex()
	return out, nil
}

// adjustColumn fills Q and Significant for one feature's cells using the
// Benjamini-Hochberg step-up procedure over the n node p-values.
func adjustColumn(cells []Cell, alpha float64) {
	n := len(cells)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return cells[order[a]].P < cells[order[b]].P
	})

	// q_(k) = min over ranks >= k of p_(k) * n / k, clamped to 1.
	q := make([]float64, n)
	minSoFar := 1.0
	for rank := n; rank >= 1; rank-- {
		i := order[rank-1]
		adj := cells[i].P * float64(n) / float64(rank)
		if adj < minSoFar {
			minSoFar = adj
		}
		q[i] = minSoFar
	}

	for i := range cells {
		cells[i].Q = q[i]
		cells[i].Significant = q[i] <= alpha
	}
}
