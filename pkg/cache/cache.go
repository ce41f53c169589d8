// Package cache provides pluggable caching for expensive analysis phases.
//
// # Overview
//
// Neighborhood construction and permutation scoring dominate run time, so
// both are cached behind content-derived keys: the same graph, matrix, and
// options always map to the same key regardless of where the run executes.
// Three backends are provided: a file cache for CLI usage, a Redis cache for
// shared deployments, and a null cache that disables caching entirely.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached phase. Neighborhoods depend only on graph topology
// and radius, so they stay valid far longer than scored results, which a
// re-seeded run replaces.
const (
	TTLNeighborhood = 7 * 24 * time.Hour
	TTLScore        = 24 * time.Hour
	TTLEmbedding    = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves the value for key. The second return reports whether
	// the key was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ScoreKeyOpts are the scoring parameters that change the cached result.
type ScoreKeyOpts struct {
	Permutations int
	Aggregate    string
	Seed         uint64
	Alpha        float64
}

// EmbeddingKeyOpts are the projection parameters that change the cached
// embedding.
type EmbeddingKeyOpts struct {
	Mode string
	Dims int
}

// Keyer generates cache keys for each analysis phase.
type Keyer interface {
	// NeighborhoodKey keys a neighborhood index by graph content and radius.
	NeighborhoodKey(graphHash string, radius int) string

	// ScoreKey keys a corrected enrichment result by graph content, feature
	// matrix content, and scoring options.
	ScoreKey(graphHash, matrixHash string, opts ScoreKeyOpts) string

	// EmbeddingKey keys an ordination embedding by the result it projects
	// and the projection options.
	EmbeddingKey(resultHash string, opts EmbeddingKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// NeighborhoodKey generates a key for neighborhood-index caching.
func (k *DefaultKeyer) NeighborhoodKey(graphHash string, radius int) string {
	return hashKey("nbhd", graphHash, radius)
}

// ScoreKey generates a key for enrichment-result caching.
func (k *DefaultKeyer) ScoreKey(graphHash, matrixHash string, opts ScoreKeyOpts) string {
	return hashKey("score", graphHash, matrixHash, opts)
}

// EmbeddingKey generates a key for embedding caching.
func (k *DefaultKeyer) EmbeddingKey(resultHash string, opts EmbeddingKeyOpts) string {
	return hashKey("embed", resultHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
