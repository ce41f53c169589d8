// Package pkg provides the core libraries for enrichmap spatial enrichment analysis.
//
// # Overview
//
// Enrichmap scores how strongly annotation features concentrate in the local
// neighborhoods of a network, following the SAFE (spatial analysis of
// functional enrichment) approach: each node defines a topological
// neighborhood, each feature is aggregated over that neighborhood, and a
// permutation null model decides whether the observed aggregate is higher or
// lower than chance. The pkg directory is organized into four main areas:
//
//  1. Domain logic (network, feature, safe, stratify, ordination)
//  2. Infrastructure (cache, store, errors, observability)
//  3. Export (tabular, JSON, and DOT output)
//  4. Orchestration (pipeline)
//
// # Architecture
//
// The typical data flow through enrichmap:
//
//	Node-link graph + feature matrices
//	         ↓
//	    [network] package (validation, BFS neighborhood index)
//	         ↓
//	    [safe] package (permutation scoring + FDR correction)
//	         ↓
//	    [stratify] package (dominant-feature domains)
//	         ↓
//	    [ordination] package (correlation-distance embedding)
//	         ↓
//	    JSON/CSV/DOT output
//
// # Quick Start
//
// Run the full pipeline:
//
//	import (
//	    "context"
//	    "github.com/mhalvorsen/enrichmap/pkg/network"
//	    "github.com/mhalvorsen/enrichmap/pkg/feature"
//	    "github.com/mhalvorsen/enrichmap/pkg/pipeline"
//	)
//
//	g, _ := network.ReadGraphFile("network.json")
//	m, _ := feature.ReadCSVFile("features.csv")
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), g, m, pipeline.Options{
//	    Radius:       1,
//	    Permutations: 1000,
//	    Seed:         42,
//	})
//
// # Main Packages
//
// ## Domain Logic
//
// [network] - Undirected node-link graphs with adjacency indexing, JSON
// serialization, and BFS neighborhood construction at a configurable radius.
//
// [feature] - Sample-by-feature matrices: CSV loading with categorical
// one-hot expansion, column-wise joining, and graph alignment checks.
//
// [safe] - The permutation null model. Scores every (feature, node) pair
// with continuity-corrected directional p-values and applies per-feature
// Benjamini-Hochberg FDR correction.
//
// [stratify] - Assigns each node to the stratum of its dominant feature,
// with a "none" stratum for nodes without significant enrichment.
//
// [ordination] - Embeds nodes or features into low-dimensional space via
// correlation distance and Torgerson classical MDS, with support for merging
// independent results into a joint embedding.
//
// ## Infrastructure
//
// [cache] - Content-addressed caching of neighborhood indexes, corrected
// scores, and embeddings. FileCache for the CLI, RedisCache for shared
// deployments, NullCache for tests.
//
// [store] - Persistent run storage. MemoryStore for tests and single-process
// servers, MongoStore for durable deployments.
//
// [errors] - Coded errors shared by all packages; the API maps codes to HTTP
// status responses.
//
// [observability] - Hook interfaces for instrumenting pipeline phases, cache
// access, and API requests.
//
// ## Export
//
// [export] - Flat record types and writers for enrichment tables, strata,
// ordination coordinates, and feature rankings (JSON, CSV, Graphviz DOT).
//
// ## Orchestration
//
// [pipeline] - The complete neighborhoods → score → stratify → project
// pipeline used by CLI and API. Ensures consistent behavior across all entry
// points.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/safe/...         # Specific package
//	go test -run Example           # Examples only
//
// [network]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/network
// [feature]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/feature
// [safe]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/safe
// [stratify]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/stratify
// [ordination]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/ordination
// [cache]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/cache
// [store]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/store
// [errors]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/observability
// [export]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/export
// [pipeline]: https://pkg.go.dev/github.com/mhalvorsen/enrichmap/pkg/pipeline
package pkg
