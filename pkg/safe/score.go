package safe

import (
	"context"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/feature"
	"github.com/mhalvorsen/enrichmap/pkg/network"
)

// Score computes the enrichment matrix for every (node, feature) pair.
//
// Features are scored in parallel, bounded by opts.Workers. Each feature
// owns its row of the cell matrix, so no synchronization is needed beyond
// the worker pool itself. Cancelling ctx stops the run at the next feature
// boundary; columns committed before cancellation remain valid in the
// returned result (a nil row marks an unscored feature), alongside the
// context error.
//
// Fails fast with an INVALID_GRAPH error when a neighborhood node has no
// sample row in the matrix; per-feature degeneracy never aborts the run.
func Score(ctx context.Context, idx *network.NeighborhoodIndex, m *feature.Matrix, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	agg, err := AggregateByName(opts.Aggregate)
	if err != nil {
		return nil, err
	}

	nodes := idx.NodeIDs()
	pos := make(map[string]int, len(nodes))
	for i, id := range nodes {
		pos[id] = i
	}
	// Pre-resolve neighborhood member IDs to positions once; shared
	// read-only by all feature workers.
	memberPos := make([][]int, len(nodes))
	for i, id := range nodes {
		members := idx.Members(id)
		memberPos[i] = make([]int, len(members))
		for k, mid := range members {
			memberPos[i][k] = pos[mid]
		}
	}
	// Structural precondition: every node needs a sample row.
	if m.NumFeatures() > 0 {
		for _, id := range nodes {
			if _, ok := m.Value(id, 0); !ok {
				return nil, errors.New(errors.ErrCodeInvalidGraph,
					"graph node %q has no matching sample row", id)
			}
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	result := &Result{
		NodeIDs:      nodes,
		Features:     m.Names(),
		Cells:        make([][]Cell, m.NumFeatures()),
		Permutations: opts.Permutations,
		Seed:         seed,
	}
	degenerate := make([]bool, m.NumFeatures())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for j := 0; j < m.NumFeatures(); j++ {
		g.Go(func() error {
			// Cancellation is honored between features only; a started
			// feature runs its permutations to completion.
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			values := make([]float64, len(nodes))
			for i, id := range nodes {
				v, _ := m.Value(id, j)
				values[i] = v
			}
			if countDistinct(values) < 2 {
				degenerate[j] = true
				result.Cells[j] = undefinedColumn(len(nodes))
				return nil
			}
			result.Cells[j] = scoreFeature(values, memberPos, agg, opts.Permutations, seed, uint64(j))
			return nil
		})
	}
	err = g.Wait()

	for j, name := range result.Features {
		if degenerate[j] {
			result.Degenerate = append(result.Degenerate, name)
		}
	}
	result.buildIndex()
	if err != nil {
		return result, err
	}
	return result, nil
}

// scoreFeature computes one feature's cells. The permutation stream is
// seeded with (seed, featureIndex) so results do not depend on worker
// scheduling.
func scoreFeature(values []float64, memberPos [][]int, agg AggregateFunc, permutations int, seed, featureIndex uint64) []Cell {
	n := len(values)
	observed := make([]float64, n)
	scratch := make([]float64, 0, n)
	for i := range memberPos {
		observed[i] = aggregateAt(values, memberPos[i], agg, &scratch)
	}

	rng := rand.New(rand.NewPCG(seed, featureIndex))
	shuffled := append([]float64(nil), values...)
	ge := make([]int, n) // null >= observed
	le := make([]int, n) // null <= observed

	for p := 0; p < permutations; p++ {
		rng.Shuffle(n, func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		for i := range memberPos {
			null := aggregateAt(shuffled, memberPos[i], agg, &scratch)
			if null >= observed[i] {
				ge[i]++
			}
			if null <= observed[i] {
				le[i]++
			}
		}
	}

	denom := float64(permutations + 1)
	logMin := math.Log10(1 / denom)
	cells := make([]Cell, n)
	for i := range cells {
		pEnrich := (1 + float64(ge[i])) / denom
		pDeplete := (1 + float64(le[i])) / denom

		var dir Direction
		p := pEnrich
		switch {
		case pEnrich < pDeplete:
			dir = DirectionEnriched
		case pDeplete < pEnrich:
			dir = DirectionDepleted
			p = pDeplete
		default:
			dir = DirectionNone
		}

		cells[i] = Cell{
			Observed:  observed[i],
			PEnrich:   pEnrich,
			PDeplete:  pDeplete,
			P:         p,
			Score:     math.Log10(p) / logMin,
			Direction: dir,
		}
	}
	return cells
}

// aggregateAt applies agg to the values at the given positions, reusing the
// caller's scratch buffer to avoid per-call allocation.
func aggregateAt(values []float64, positions []int, agg AggregateFunc, scratch *[]float64) float64 {
	buf := (*scratch)[:0]
	for _, p := range positions {
		buf = append(buf, values[p])
	}
	*scratch = buf
	return agg(buf)
}

// undefinedColumn fills a degenerate feature's cells with the explicit
// undefined marker instead of fabricated p-values.
func undefinedColumn(n int) []Cell {
	cells := make([]Cell, n)
	for i := range cells {
		cells[i] = Cell{P: 1, PEnrich: 1, PDeplete: 1, Q: 1, Direction: DirectionUndefined}
	}
	return cells
}

func countDistinct(values []float64) int {
	seen := make(map[float64]struct{}, 2)
	for _, v := range values {
		seen[v] = struct{}{}
		if len(seen) == 2 {
			break
		}
	}
	return len(seen)
}
