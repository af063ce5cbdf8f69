package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/peoplemap/internal/db"
	"github.com/jonathan/peoplemap/internal/graph"
	"github.com/jonathan/peoplemap/internal/logger"
	"github.com/jonathan/peoplemap/internal/pipeline"
	"github.com/jonathan/peoplemap/internal/types"
	"github.com/jonathan/peoplemap/internal/view"
	"github.com/spf13/cast"
)

// HealthResponse represents the response for /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// DiagnosticsResponse represents the response for /map/diagnostics
type DiagnosticsResponse struct {
	Stats       graph.Stats         `json:"stats"`
	Diagnostics []types.DanglingRef `json:"diagnostics"`
	BuiltAt     time.Time           `json:"built_at"`
}

// DiagnosticsFailure is returned by /map/diagnostics when the build failed.
type DiagnosticsFailure struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// pinger is implemented by stores backed by a database.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	p, ok := s.store.(pinger)
	if !ok {
		s.jsonResponse(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		logger.Warn("health check: database unreachable", "err", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}

// handleMap builds the map from the content source and returns its render model.
// Any fatal error is replaced by a single failure state.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	result, err := pipeline.Run(r.Context(), s.pipeline)
	if err != nil {
		s.failureResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result.View)
}

// handleMapDiagnostics builds the map and reports its statistics and dangling relations.
func (s *Server) handleMapDiagnostics(w http.ResponseWriter, r *http.Request) {
	result, err := pipeline.Run(r.Context(), s.pipeline)
	if err != nil {
		s.jsonResponse(w, HTTPStatus(err), DiagnosticsFailure{Kind: pipeline.Kind(err), Error: err.Error()})
		return
	}

	diagnostics := result.Graph.Diagnostics
	if diagnostics == nil {
		diagnostics = []types.DanglingRef{}
	}
	s.jsonResponse(w, http.StatusOK, DiagnosticsResponse{
		Stats:       result.Stats,
		Diagnostics: diagnostics,
		BuiltAt:     result.BuiltAt,
	})
}

// handleMapStream builds the map and streams progress via SSE, ending with
// either a "map" or a "failure" event.
func (s *Server) handleMapStream(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := s.pipeline
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			logger.Warn("error writing SSE event", "err", err)
		}
	}

	result, err := pipeline.Run(r.Context(), opts)
	if err != nil {
		logger.Error("people map build failed", "kind", pipeline.Kind(err), "err", err)
		sse.WriteEvent("failure", view.Failure(pipeline.FailureMessage(err))) //nolint:errcheck
		return
	}
	sse.WriteEvent("map", result.View) //nolint:errcheck
}

// handleCreateSnapshot builds the map and stores it as a new snapshot.
func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.publisher.Publish(r.Context())
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	w.Header().Set("Location", "/snapshots/"+snapshot.ID.String())
	s.jsonResponse(w, http.StatusCreated, snapshot.Summary())
}

// handleListSnapshots lists stored snapshots, newest first.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil || n <= 0 || n > 100 {
			s.errorFromErr(w, &ErrValidation{Field: "limit", Message: "must be between 1 and 100"})
			return
		}
		limit = n
	}

	summaries, err := s.store.ListSnapshots(r.Context(), limit)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if summaries == nil {
		summaries = []db.SnapshotSummary{}
	}
	s.jsonResponse(w, http.StatusOK, summaries)
}

// handleLatestSnapshot returns the most recently published snapshot.
func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.LatestSnapshot(r.Context())
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if snapshot == nil {
		s.errorFromErr(w, &ErrNotFound{Resource: "snapshot"})
		return
	}
	s.jsonResponse(w, http.StatusOK, snapshot)
}

// handleGetSnapshot returns one snapshot by ID.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	snapshot, err := s.store.GetSnapshot(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if snapshot == nil {
		s.errorFromErr(w, &ErrNotFound{Resource: "snapshot", ID: idStr})
		return
	}
	s.jsonResponse(w, http.StatusOK, snapshot)
}

// failureResponse logs a fatal build error and writes the public failure state.
func (s *Server) failureResponse(w http.ResponseWriter, err error) {
	logger.Error("people map build failed", "kind", pipeline.Kind(err), "err", err)
	s.jsonResponse(w, HTTPStatus(err), view.Failure(pipeline.FailureMessage(err)))
}

// errorFromErr writes an error JSON response with the status mapped from err.
func (s *Server) errorFromErr(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
		s.errorResponse(w, status, "Internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// jsonResponse writes a JSON response. The body is encoded before the status
// line goes out, so an unencodable value becomes a 500 instead of a truncated 200.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		logger.Error("error encoding JSON response", "status", status, "err", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Debug("error writing JSON response", "err", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
