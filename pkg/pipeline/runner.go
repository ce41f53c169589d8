package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mhalvorsen/enrichmap/pkg/cache"
	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/feature"
	"github.com/mhalvorsen/enrichmap/pkg/network"
	"github.com/mhalvorsen/enrichmap/pkg/observability"
	"github.com/mhalvorsen/enrichmap/pkg/ordination"
	"github.com/mhalvorsen/enrichmap/pkg/safe"
	"github.com/mhalvorsen/enrichmap/pkg/stratify"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete neighborhoods → score → stratify → project
// pipeline with caching.
//
// The feature matrix must align 1:1 with the graph's nodes. A projection
// that fails for lack of entities is logged and skipped rather than failing
// the run; all other phase errors abort.
func (r *Runner) Execute(ctx context.Context, g *network.Graph, m *feature.Matrix, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid options")
	}
	r.applyLogger(&opts)

	if err := m.Align(g); err != nil {
		return nil, err
	}

	result := &Result{
		RunID: uuid.NewString(),
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.FeatureCount = m.NumFeatures()

	graphData, err := network.MarshalGraph(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph")
	}
	result.GraphHash = cache.Hash(graphData)

	// Phase 1: Neighborhoods
	nbhdStart := time.Now()
	idx, nbhdHit, err := r.NeighborhoodsWithCacheInfo(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, err
	}
	result.Neighborhoods = idx
	result.Stats.NeighborhoodTime = time.Since(nbhdStart)
	result.CacheInfo.NeighborhoodHit = nbhdHit

	r.Logger.Info("indexed neighborhoods",
		"nodes", idx.Size(),
		"radius", opts.Radius,
		"cached", nbhdHit,
		"duration", result.Stats.NeighborhoodTime)

	// Phase 2: Score and correct
	scoreStart := time.Now()
	matrixData, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize feature matrix")
	}
	corrected, scoreHit, err := r.ScoreWithCacheInfo(ctx, idx, m, result.GraphHash, cache.Hash(matrixData), opts)
	if err != nil {
		return nil, err
	}
	result.Enrichment = corrected
	result.Stats.ScoreTime = time.Since(scoreStart)
	result.Stats.SignificantCells = countSignificant(corrected)
	result.CacheInfo.ScoreHit = scoreHit

	r.Logger.Info("scored enrichment",
		"features", len(corrected.Features),
		"degenerate", len(corrected.Degenerate),
		"significant_cells", result.Stats.SignificantCells,
		"seed", corrected.Seed,
		"cached", scoreHit,
		"duration", result.Stats.ScoreTime)

	// Phase 3: Stratify
	result.Assignment = stratify.Assign(corrected)
	strata := result.Assignment.Strata()
	observability.Analysis().OnStratifyComplete(ctx, len(strata))

	r.Logger.Info("stratified network", "strata", len(strata))

	// Phase 4: Project
	if !opts.SkipProjection {
		projectStart := time.Now()
		emb, embHit, err := r.ProjectWithCacheInfo(ctx, corrected, opts)
		if err != nil {
			if errors.Is(err, errors.ErrCodeInsufficientRank) {
				r.Logger.Warn("skipping projection", "reason", errors.UserMessage(err))
			} else {
				return nil, err
			}
		}
		result.Embedding = emb
		result.Stats.ProjectTime = time.Since(projectStart)
		result.CacheInfo.EmbeddingHit = embHit

		if emb != nil {
			r.Logger.Info("projected ordination",
				"mode", emb.Mode,
				"entities", len(emb.Entities),
				"cached", embHit,
				"duration", result.Stats.ProjectTime)
		}
	}

	result.CreatedAt = time.Now().UTC()
	return result, nil
}

// NeighborhoodsWithCacheInfo builds the neighborhood index with caching and
// returns cache hit info.
func (r *Runner) NeighborhoodsWithCacheInfo(ctx context.Context, g *network.Graph, graphHash string, opts Options) (*network.NeighborhoodIndex, bool, error) {
	key := r.Keyer.NeighborhoodKey(graphHash, opts.Radius)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached network.NeighborhoodIndex
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "nbhd")
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "nbhd")
	}

	observability.Analysis().OnNeighborhoodStart(ctx, g.NodeCount(), opts.Radius)
	start := time.Now()
	idx, err := network.BuildNeighborhoods(g, opts.Radius)
	observability.Analysis().OnNeighborhoodComplete(ctx, g.NodeCount(), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(idx); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLNeighborhood)
		observability.Cache().OnCacheSet(ctx, "nbhd", len(data))
	}
	return idx, false, nil
}

// Neighborhoods is a convenience wrapper that discards the cache hit info.
func (r *Runner) Neighborhoods(ctx context.Context, g *network.Graph, opts Options) (*network.NeighborhoodIndex, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	data, err := network.MarshalGraph(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph")
	}
	idx, _, err := r.NeighborhoodsWithCacheInfo(ctx, g, cache.Hash(data), opts)
	return idx, err
}

// ScoreWithCacheInfo runs the permutation scorer and FDR correction with
// caching and returns cache hit info.
//
// Runs without an explicit seed draw a fresh one, so their results are never
// served from or written to the cache.
func (r *Runner) ScoreWithCacheInfo(ctx context.Context, idx *network.NeighborhoodIndex, m *feature.Matrix, graphHash, matrixHash string, opts Options) (*safe.Result, bool, error) {
	cacheable := opts.Seed != 0
	key := r.Keyer.ScoreKey(graphHash, matrixHash, opts.ScoreKeyOpts())

	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached safe.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "score")
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "score")
	}

	observability.Analysis().OnScoreStart(ctx, idx.Size(), m.NumFeatures(), opts.Permutations)
	start := time.Now()
	raw, err := safe.Score(ctx, idx, m, opts.safeOptions())
	observability.Analysis().OnScoreComplete(ctx, m.NumFeatures(), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	corrected, err := safe.Correct(raw, opts.Alpha)
	if err != nil {
		return nil, false, err
	}
	observability.Analysis().OnCorrectComplete(ctx, opts.Alpha, countSignificant(corrected))

	if cacheable {
		if data, err := json.Marshal(corrected); err == nil {
			_ = r.Cache.Set(ctx, key, data, cache.TTLScore)
			observability.Cache().OnCacheSet(ctx, "score", len(data))
		}
	}
	return corrected, false, nil
}

// Score is a convenience wrapper that discards the cache hit info. The
// caller provides options that have already passed validation, or accepts
// the defaults applied here.
func (r *Runner) Score(ctx context.Context, idx *network.NeighborhoodIndex, m *feature.Matrix, opts Options) (*safe.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	matrixData, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize feature matrix")
	}
	// Neighborhood membership is part of what the score depends on, so the
	// graph hash is derived from the index content here.
	idxData, err := json.Marshal(idx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize neighborhood index")
	}
	result, _, err := r.ScoreWithCacheInfo(ctx, idx, m, cache.Hash(idxData), cache.Hash(matrixData), opts)
	return result, err
}

// ProjectWithCacheInfo runs the ordination projection with caching and
// returns cache hit info.
func (r *Runner) ProjectWithCacheInfo(ctx context.Context, corrected *safe.Result, opts Options) (*ordination.Embedding, bool, error) {
	resultData, err := json.Marshal(corrected)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize result")
	}
	key := r.Keyer.EmbeddingKey(cache.Hash(resultData), opts.EmbeddingKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached ordination.Embedding
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "embed")
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "embed")
	}

	mode := ordination.AxisMode(opts.AxisMode)
	entityCount := len(corrected.NodeIDs)
	if mode == ordination.AxisFeatures {
		entityCount = len(corrected.Features) - len(corrected.Degenerate)
	}
	observability.Analysis().OnProjectStart(ctx, opts.AxisMode, entityCount)
	start := time.Now()
	emb, err := ordination.Project(corrected, mode, opts.TargetDims)
	observability.Analysis().OnProjectComplete(ctx, opts.AxisMode, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(emb); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLEmbedding)
		observability.Cache().OnCacheSet(ctx, "embed", len(data))
	}
	return emb, false, nil
}

// Project is a convenience wrapper that discards the cache hit info.
func (r *Runner) Project(ctx context.Context, corrected *safe.Result, opts Options) (*ordination.Embedding, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	emb, _, err := r.ProjectWithCacheInfo(ctx, corrected, opts)
	return emb, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// countSignificant counts cells that passed correction.
func countSignificant(r *safe.Result) int {
	n := 0
	for _, row := range r.Cells {
		for _, c := range row {
			if c.Significant {
				n++
			}
		}
	}
	return n
}
