package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/feature"
	"github.com/mhalvorsen/enrichmap/pkg/network"
	"github.com/mhalvorsen/enrichmap/pkg/pipeline"
	"github.com/mhalvorsen/enrichmap/pkg/store"
)

// runRequest is the POST /runs request body. The graph is node-link JSON,
// the matrix a serialized feature table.
type runRequest struct {
	Graph   json.RawMessage  `json:"graph"`
	Matrix  json.RawMessage  `json:"matrix"`
	Options pipeline.Options `json:"options"`
}

// runResponse is the POST /runs response body.
type runResponse struct {
	Run   store.Summary      `json:"run"`
	Stats pipeline.Stats     `json:"stats"`
	Cache pipeline.CacheInfo `json:"cache"`
}

// handleCreateRun executes a full analysis run and persists the result.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidConfig, "decode request body: %v", err))
		return
	}
	if len(req.Graph) == 0 || len(req.Matrix) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidConfig, "request needs both a graph and a matrix"))
		return
	}

	g, err := network.ReadGraph(bytes.NewReader(req.Graph))
	if err != nil {
		writeError(w, err)
		return
	}
	var m feature.Matrix
	if err := json.Unmarshal(req.Matrix, &m); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFeature, err, "decode feature matrix"))
		return
	}

	req.Options.Logger = s.logger
	result, err := s.runner.Execute(r.Context(), g, &m, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	run := &store.Run{
		ID:         result.RunID,
		CreatedAt:  result.CreatedAt,
		Radius:     result.Neighborhoods.Radius(),
		Result:     result.Enrichment,
		Assignment: result.Assignment,
		Embedding:  result.Embedding,
	}
	if err := s.runs.SaveRun(r.Context(), run); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, runResponse{
		Run:   store.Summarize(run),
		Stats: result.Stats,
		Cache: result.CacheInfo,
	})
}

// handleGetRun returns one run with its full outputs.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleListRuns returns summaries of all stored runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.ListRuns(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleDeleteRun removes one run.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.runs.DeleteRun(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError maps error codes to HTTP statuses and writes the envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidFeature, errors.ErrCodeInvalidConfig,
		errors.ErrCodeUnsupported:
		status = http.StatusBadRequest
	case errors.ErrCodeRunNotFound, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInsufficientRank, errors.ErrCodeDegenerateFeature:
		status = http.StatusUnprocessableEntity
	}

	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
