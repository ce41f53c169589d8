// Package api implements the enrichmap HTTP API.
//
// The API accepts analysis runs over HTTP, executes them through the shared
// pipeline runner, and persists results in a run store so they can be
// retrieved later. It is deliberately small: submit a run, fetch a run, list
// runs, delete a run.
package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mhalvorsen/enrichmap/pkg/buildinfo"
	"github.com/mhalvorsen/enrichmap/pkg/pipeline"
	"github.com/mhalvorsen/enrichmap/pkg/store"
)

// Server bundles the pipeline runner with run persistence.
type Server struct {
	runner *pipeline.Runner
	runs   store.Store
	logger *log.Logger
}

// NewServer creates a server. A nil store falls back to in-memory
// persistence and a nil logger to the default logger.
func NewServer(runner *pipeline.Runner, runs store.Store, logger *log.Logger) *Server {
	if runs == nil {
		runs = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		runs:   runs,
		logger: logger,
	}
}

// Router builds the HTTP route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
		r.Delete("/{id}", s.handleDeleteRun)
	})
	return r
}

// handleHealth reports liveness and the running version.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}
