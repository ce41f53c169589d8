// Package ordination projects high-dimensional enrichment profiles into a
// low-dimensional space for 2-D visualization.
//
// Entities (nodes or features, depending on the axis mode) are described by
// their signed enrichment-score profiles. A correlation-derived distance
// matrix between profiles is fed to classical multidimensional scaling
// (Torgerson), an eigendecomposition of the doubly-centered distance matrix;
// the leading axes, scaled by their eigenvalues, become the embedding
// coordinates and each axis reports its share of explained variance.
//
// Two independently computed results can be merged onto the union of their
// entities before projection (missing entries contribute zero), which puts
// metadata-derived and abundance-derived enrichment into one shared space.
package ordination

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/mds"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/safe"
)

// AxisMode selects which entities are embedded.
type AxisMode string

const (
	// AxisNodes embeds graph nodes; each profile is the node's vector of
	// per-feature scores.
	AxisNodes AxisMode = "nodes"
	// AxisFeatures embeds features; each profile is the feature's vector of
	// per-node scores.
	AxisFeatures AxisMode = "features"
)

// DefaultTargetDims is the embedding dimensionality used when none is
// configured.
const DefaultTargetDims = 2

// ValidAxisMode reports whether mode is a known axis mode.
func ValidAxisMode(mode AxisMode) bool {
	return mode == AxisNodes || mode == AxisFeatures
}

// Embedding is the result of one projection.
type Embedding struct {
	// Mode records which entities were embedded.
	Mode AxisMode `json:"mode" bson:"mode"`
	// Entities holds the embedded identifiers in deterministic order.
	Entities []string `json:"entities" bson:"entities"`
	// Coordinates is the (entity x dims) coordinate matrix.
	Coordinates [][]float64 `json:"coordinates" bson:"coordinates"`
	// VarianceExplained is the fraction of total positive-eigenvalue
	// variance captured by each axis.
	VarianceExplained []float64 `json:"variance_explained" bson:"variance_explained"`
}

// Project embeds the entities of a corrected enrichment result.
//
// Returns an INSUFFICIENT_RANK error when fewer than targetDims+1 entities
// are available (degenerate and unscored features do not count), and an
// INVALID_CONFIG error for an unknown axis mode or non-positive dimension
// count.
func Project(r *safe.Result, mode AxisMode, targetDims int) (*Embedding, error) {
	if targetDims == 0 {
		targetDims = DefaultTargetDims
	}
	if err := errors.ValidateTargetDims(targetDims); err != nil {
		return nil, err
	}
	if !ValidAxisMode(mode) {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"unknown axis mode %q (must be nodes or features)", mode)
	}

	entities, profiles := buildProfiles(r, mode)
	if len(entities) < targetDims+1 {
		return nil, errors.New(errors.ErrCodeInsufficientRank,
			"%d entities cannot support a %d-dimensional embedding (need at least %d)",
			len(entities), targetDims, targetDims+1)
	}

	dist := distanceMatrix(profiles)
	var coords mat.Dense
	k, eig := mds.TorgersonScaling(&coords, nil, dist)
	if k == 0 {
		return nil, errors.New(errors.ErrCodeInsufficientRank,
			"distance matrix has no positive eigenvalues")
	}

	return assembleEmbedding(mode, entities, &coords, eig, k, targetDims), nil
}

// buildProfiles extracts signed score profiles for the requested axis.
// Enriched cells contribute +score, depleted cells -score, undefined and
// neither cells zero. Degenerate and unscored features are excluded
// entirely.
func buildProfiles(r *safe.Result, mode AxisMode) ([]string, [][]float64) {
	var liveFeatures []int
	for j, name := range r.Features {
		if r.Cells[j] == nil || r.IsDegenerate(name) {
			continue
		}
		liveFeatures = append(liveFeatures, j)
	}

	if mode == AxisNodes {
		entities := r.NodeIDs
		profiles := make([][]float64, len(entities))
		for i := range entities {
			profile := make([]float64, len(liveFeatures))
			for c, j := range liveFeatures {
				profile[c] = signedScore(r.Cells[j][i])
			}
			profiles[i] = profile
		}
		return entities, profiles
	}

	entities := make([]string, len(liveFeatures))
	profiles := make([][]float64, len(liveFeatures))
	for c, j := range liveFeatures {
		entities[c] = r.Features[j]
		profile := make([]float64, len(r.NodeIDs))
		for i := range r.NodeIDs {
			profile[i] = signedScore(r.Cells[j][i])
		}
		profiles[c] = profile
	}
	return entities, profiles
}

func signedScore(c safe.Cell) float64 {
	switch c.Direction {
	case safe.DirectionEnriched:
		return c.Score
	case safe.DirectionDepleted:
		return -c.Score
	default:
		return 0
	}
}

// distanceMatrix builds the pairwise correlation-derived distance
// d = sqrt(2 * (1 - r)) between profiles. Profiles with zero variance
// correlate with nothing and are treated as uncorrelated (r = 0).
func distanceMatrix(profiles [][]float64) *mat.SymDense {
	n := len(profiles)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := stat.Correlation(profiles[i], profiles[j], nil)
			if math.IsNaN(r) {
				r = 0
			}
			d.SetSym(i, j, math.Sqrt(2*(1-r)))
		}
	}
	return d
}

// assembleEmbedding trims the MDS output to targetDims axes, padding with
// zero coordinates when the decomposition yielded fewer positive axes than
// requested.
func assembleEmbedding(mode AxisMode, entities []string, coords *mat.Dense, eig []float64, k, targetDims int) *Embedding {
	var total float64
	for i := 0; i < k && i < len(eig); i++ {
		if eig[i] > 0 {
			total += eig[i]
		}
	}

	out := &Embedding{
		Mode:              mode,
		Entities:          entities,
		Coordinates:       make([][]float64, len(entities)),
		VarianceExplained: make([]float64, targetDims),
	}
	for axis := 0; axis < targetDims && axis < k && axis < len(eig); axis++ {
		if total > 0 && eig[axis] > 0 {
			out.VarianceExplained[axis] = eig[axis] / total
		}
	}
	_, cols := coords.Dims()
	for i := range entities {
		row := make([]float64, targetDims)
		for axis := 0; axis < targetDims && axis < k && axis < cols; axis++ {
			row[axis] = coords.At(i, axis)
		}
		out.Coordinates[i] = row
	}
	return out
}
