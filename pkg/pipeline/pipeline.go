// Package pipeline provides the core analysis pipeline for enrichmap.
//
// This package implements the complete neighborhoods → score → correct →
// stratify → project pipeline that can be used by CLI and API components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four phases:
//
//  1. Neighborhoods: Index every node's topological neighborhood
//  2. Score: Run the permutation null model and FDR correction
//  3. Stratify: Assign each node to its dominant-feature stratum
//  4. Project: Embed entities into a low-dimensional ordination space
//
// Each phase can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Radius:       1,
//	    Permutations: 1000,
//	    Seed:         42,
//	}
//	result, err := runner.Execute(ctx, g, matrix, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Assignment.Strata())
//
// Run individual phases:
//
//	// Neighborhoods only
//	idx, err := runner.Neighborhoods(ctx, g, opts)
//
//	// Score with an existing index
//	corrected, err := runner.Score(ctx, idx, matrix, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mhalvorsen/enrichmap/pkg/cache"
	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/network"
	"github.com/mhalvorsen/enrichmap/pkg/ordination"
	"github.com/mhalvorsen/enrichmap/pkg/safe"
	"github.com/mhalvorsen/enrichmap/pkg/stratify"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultRadius is the neighborhood radius used when none is configured.
	// One hop keeps neighborhoods local enough that enrichment remains a
	// statement about a node's immediate context.
	DefaultRadius = 1

	// DefaultAxisMode is the default ordination axis.
	DefaultAxisMode = string(ordination.AxisFeatures)
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the analysis pipeline.
// This struct supports JSON serialization for API requests and TOML for
// run-config files.
type Options struct {
	// Neighborhood options
	Radius int `json:"radius,omitempty" toml:"radius"`

	// Scoring options
	Permutations int     `json:"permutations,omitempty" toml:"permutations"`
	Aggregate    string  `json:"aggregate,omitempty" toml:"aggregate"`
	Alpha        float64 `json:"alpha,omitempty" toml:"alpha"`
	Seed         uint64  `json:"seed,omitempty" toml:"seed"`
	Workers      int     `json:"workers,omitempty" toml:"workers"`

	// Projection options
	AxisMode       string `json:"axis_mode,omitempty" toml:"axis_mode"`
	TargetDims     int    `json:"target_dims,omitempty" toml:"target_dims"`
	SkipProjection bool   `json:"skip_projection,omitempty" toml:"skip_projection"`

	// Refresh bypasses cached neighborhoods and scores.
	Refresh bool `json:"refresh,omitempty" toml:"refresh"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-" toml:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// CreatedAt is the run completion time in UTC.
	CreatedAt time.Time

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Neighborhoods is the computed neighborhood index.
	Neighborhoods *network.NeighborhoodIndex

	// Enrichment is the corrected enrichment matrix.
	Enrichment *safe.Result

	// Assignment maps nodes to their dominant-feature strata.
	Assignment *stratify.Assignment

	// Embedding is the ordination projection. Nil when projection was
	// skipped or the entity count could not support it.
	Embedding *ordination.Embedding

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which phases hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount        int
	EdgeCount        int
	FeatureCount     int
	SignificantCells int
	NeighborhoodTime time.Duration
	ScoreTime        time.Duration
	ProjectTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline phase.
type CacheInfo struct {
	NeighborhoodHit bool // Whether the neighborhood index came from cache
	ScoreHit        bool // Whether the corrected result came from cache
	EmbeddingHit    bool // Whether the embedding came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported,
			"unsupported format: %q (must be one of: json, csv, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if err := errors.ValidateRadius(o.Radius); err != nil {
		return err
	}
	if o.AxisMode == "" {
		o.AxisMode = DefaultAxisMode
	}
	if !ordination.ValidAxisMode(ordination.AxisMode(o.AxisMode)) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid axis_mode: %q (must be nodes or features)", o.AxisMode)
	}
	if o.TargetDims == 0 {
		o.TargetDims = ordination.DefaultTargetDims
	}
	if err := errors.ValidateTargetDims(o.TargetDims); err != nil {
		return err
	}

	// Scoring defaults and validation live in safe.Options; run them here
	// so invalid configuration fails before any work starts.
	safeOpts := o.safeOptions()
	if err := safeOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Permutations = safeOpts.Permutations
	o.Aggregate = safeOpts.Aggregate
	o.Alpha = safeOpts.Alpha
	o.Workers = safeOpts.Workers

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// safeOptions converts the scoring subset into scorer options.
func (o *Options) safeOptions() safe.Options {
	return safe.Options{
		Permutations: o.Permutations,
		Aggregate:    o.Aggregate,
		Alpha:        o.Alpha,
		Seed:         o.Seed,
		Workers:      o.Workers,
	}
}

// ScoreKeyOpts returns cache key options for the scoring phase.
func (o *Options) ScoreKeyOpts() cache.ScoreKeyOpts {
	return cache.ScoreKeyOpts{
		Permutations: o.Permutations,
		Aggregate:    o.Aggregate,
		Seed:         o.Seed,
		Alpha:        o.Alpha,
	}
}

// EmbeddingKeyOpts returns cache key options for the projection phase.
func (o *Options) EmbeddingKeyOpts() cache.EmbeddingKeyOpts {
	return cache.EmbeddingKeyOpts{
		Mode: o.AxisMode,
		Dims: o.TargetDims,
	}
}
