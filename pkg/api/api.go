// Package api exposes the optimization and analysis engines over HTTP.
//
// The router serves a small JSON API:
//
//	GET  /            service banner
//	GET  /health      liveness probe
//	POST /api/validate    check whether an edge list forms a DAG
//	POST /api/optimize    run the optimization pipeline
//	POST /api/analyze     run one analyzer (metrics, schedule, layers, criticality)
//	POST /api/random-dag  generate a random DAG
//	GET  /api/snapshots       list persisted snapshot IDs
//	GET  /api/snapshots/{id}  fetch one snapshot record
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dagopt/pkg/buildinfo"
	"github.com/matzehuels/dagopt/pkg/errors"
	"github.com/matzehuels/dagopt/pkg/pipeline"
)

// Server bundles the pipeline runner with HTTP plumbing.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server around the given runner.
// If logger is nil, the default logger is used.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router assembles the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/optimize", s.handleOptimize)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/random-dag", s.handleRandomDAG)
		r.Get("/snapshots", s.handleListSnapshots)
		r.Get("/snapshots/{id}", s.handleGetSnapshot)
	})

	return r
}

// requestLogger logs one line per request with status and timing.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "DAG Optimizer API",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps structured errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidNode, errors.ErrCodeInvalidEdge,
		errors.ErrCodeGraphCycle, errors.ErrCodeGraphEmpty:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSnapshotNotFound:
		status = http.StatusNotFound
	case "":
		code = errors.ErrCodeInternal
	}

	var body ErrorResponse
	body.Error.Code = string(code)
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

// decodeJSON reads the request body into v, rejecting malformed payloads.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "malformed request body")
	}
	return nil
}
