// Package safe implements permutation-based spatial enrichment scoring over
// a similarity network.
//
// # Overview
//
// For every (node, feature) pair the scorer aggregates the feature's values
// over the node's neighborhood and compares the observed aggregate against
// an empirical null distribution built from label permutations: each
// permutation shuffles the feature vector across all nodes and re-aggregates
// per neighborhood. The fraction of null scores at least as extreme as the
// observed one (continuity-corrected) is the empirical p-value, computed for
// both directions; a node is enriched when random placement rarely reaches
// its observed aggregate, depleted in the symmetric case.
//
// [Correct] then applies a Benjamini-Hochberg false-discovery-rate procedure
// independently per feature across all nodes, producing q-values and a
// significance mask that is monotone in alpha.
//
// # Determinism
//
// Permutation streams are feature-scoped: the per-feature RNG is seeded from
// the run seed combined with the feature index, so the numeric output never
// depends on worker count or scheduling order. Given the same inputs and
// seed, two runs produce bit-identical results.
//
// # Degenerate features
//
// A feature with fewer than two distinct values has a degenerate null
// distribution (every permutation is identical). Such features are marked
// undefined in the result and listed in [Result.Degenerate]; the run
// continues for all other features. Partial success is the normal completion
// mode.
package safe
