// Package store persists completed analysis runs.
//
// Two backends are provided: an in-memory store for the CLI and tests, and a
// MongoDB store for the API server, where runs must survive restarts and be
// visible to all replicas.
package store

import (
	"context"
	"time"

	"github.com/mhalvorsen/enrichmap/pkg/ordination"
	"github.com/mhalvorsen/enrichmap/pkg/safe"
	"github.com/mhalvorsen/enrichmap/pkg/stratify"
)

// Run is one persisted analysis run with its outputs.
type Run struct {
	// ID is the unique run identifier assigned at execution time.
	ID string `json:"id" bson:"_id"`
	// CreatedAt is the run completion time in UTC.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	// Radius is the neighborhood radius the run used.
	Radius int `json:"radius" bson:"radius"`
	// Result is the corrected enrichment matrix.
	Result *safe.Result `json:"result" bson:"result"`
	// Assignment maps nodes to their dominant-feature strata.
	Assignment *stratify.Assignment `json:"assignment,omitempty" bson:"assignment,omitempty"`
	// Embedding is the ordination projection, if one was requested.
	Embedding *ordination.Embedding `json:"embedding,omitempty" bson:"embedding,omitempty"`
}

// Summary is the listing view of a run.
type Summary struct {
	ID           string    `json:"id" bson:"_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	Radius       int       `json:"radius" bson:"radius"`
	NodeCount    int       `json:"node_count" bson:"node_count"`
	FeatureCount int       `json:"feature_count" bson:"feature_count"`
}

// Summarize builds the listing view of a run.
func Summarize(r *Run) Summary {
	s := Summary{ID: r.ID, CreatedAt: r.CreatedAt, Radius: r.Radius}
	if r.Result != nil {
		s.NodeCount = len(r.Result.NodeIDs)
		s.FeatureCount = len(r.Result.Features)
	}
	return s
}

// Store is the persistence interface shared by all backends.
type Store interface {
	// SaveRun persists a run, replacing any run with the same ID.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by ID. Returns a RUN_NOT_FOUND error when the
	// ID is unknown.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns summaries of all runs, newest first.
	ListRuns(ctx context.Context) ([]Summary, error)

	// DeleteRun removes a run by ID. Returns a RUN_NOT_FOUND error when the
	// ID is unknown.
	DeleteRun(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
