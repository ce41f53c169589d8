package errors

// Run-configuration bounds shared by the CLI, API, and pipeline. The
// validators return structured INVALID_CONFIG errors so all entry points
// reject out-of-range parameters the same way, before any computation starts.

// MaxPermutations bounds the permutation count to keep null-model memory
// proportional to nodes x permutations manageable.
const MaxPermutations = 1_000_000

// MaxRadius bounds neighborhood expansion. Radii beyond the graph diameter
// collapse every neighborhood to the full node set, so large values are
// almost always a configuration mistake.
const MaxRadius = 100

// ValidatePermutations validates a permutation count for the null model.
func ValidatePermutations(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidConfig, "permutation count must be at least 1, got %d", n)
	}
	if n > MaxPermutations {
		return New(ErrCodeInvalidConfig, "permutation count too large (max %d), got %d", MaxPermutations, n)
	}
	return nil
}

// ValidateAlpha validates a significance threshold. Alpha must lie strictly
// between 0 and 1.
func ValidateAlpha(alpha float64) error {
	if alpha <= 0 || alpha >= 1 {
		return New(ErrCodeInvalidConfig, "alpha must be in (0, 1), got %g", alpha)
	}
	return nil
}

// ValidateRadius validates a neighborhood radius. Radius 0 is legal and
// yields self-only neighborhoods.
func ValidateRadius(r int) error {
	if r < 0 {
		return New(ErrCodeInvalidConfig, "radius must be non-negative, got %d", r)
	}
	if r > MaxRadius {
		return New(ErrCodeInvalidConfig, "radius too large (max %d), got %d", MaxRadius, r)
	}
	return nil
}

// ValidateTargetDims validates an ordination dimension count.
func ValidateTargetDims(d int) error {
	if d < 1 {
		return New(ErrCodeInvalidConfig, "target dimensions must be at least 1, got %d", d)
	}
	return nil
}
