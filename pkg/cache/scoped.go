package cache

// ScopedKeyer wraps a Keyer with a prefix so multiple projects or users can
// share one backend without key collisions.
//
// Example usage:
//
//	// Per-project keys on a shared Redis instance
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "soil-survey:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// NeighborhoodKey generates a prefixed key for neighborhood-index caching.
func (k *ScopedKeyer) NeighborhoodKey(graphHash string, radius int) string {
	return k.prefix + k.inner.NeighborhoodKey(graphHash, radius)
}

// ScoreKey generates a prefixed key for enrichment-result caching.
func (k *ScopedKeyer) ScoreKey(graphHash, matrixHash string, opts ScoreKeyOpts) string {
	return k.prefix + k.inner.ScoreKey(graphHash, matrixHash, opts)
}

// EmbeddingKey generates a prefixed key for embedding caching.
func (k *ScopedKeyer) EmbeddingKey(resultHash string, opts EmbeddingKeyOpts) string {
	return k.prefix + k.inner.EmbeddingKey(resultHash, opts)
}
