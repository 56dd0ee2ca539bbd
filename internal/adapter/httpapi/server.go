// Package httpapi exposes the ingestion pipeline over HTTP: dataset upload
// and retrieval for the presentation layer, plus health, readiness, and
// metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
	"github.com/couchcryptid/buoy-data-ingest/internal/pipeline"
	"github.com/couchcryptid/buoy-data-ingest/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server wires the pipeline processor into an HTTP API.
type Server struct {
	httpServer *http.Server
	processor  *pipeline.Processor
	ready      ReadinessChecker
	maxBytes   int64
	logger     *slog.Logger
}

// NewServer creates the API server. maxBytes caps a single upload body.
func NewServer(addr string, proc *pipeline.Processor, ready ReadinessChecker, maxBytes int64, logger *slog.Logger) *Server {
	s := &Server{
		processor: proc,
		ready:     ready,
		maxBytes:  maxBytes,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/datasets", func(r chi.Router) {
		r.Post("/", s.handleCreateDataset)
		r.Get("/{id}", s.handleGetDataset)
		r.Get("/{id}/export", s.handleExportDataset)
		r.Get("/{id}/stats/{column}", s.handleDatasetStats)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// errorResponse is the tagged failure body: the taxonomy error name plus the
// human-readable diagnostic. Never accompanied by partial data.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "not ready", "error": err.Error()})
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ready"})
}

// handleCreateDataset accepts a multipart upload (field "file") or a raw
// body, runs the pipeline, and returns the dataset or a tagged failure.
func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	upload, err := s.readUpload(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "BadRequest", Message: err.Error()})
		return
	}
	if len(upload.Data) == 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "BadRequest", Message: "empty upload"})
		return
	}

	ds, err := s.processor.Process(r.Context(), upload)
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, errorResponse{Error: domain.ErrorName(err), Message: err.Error()})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ds)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	out, ok := s.lookup(w, r)
	if !ok {
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, out.Dataset)
}

// handleExportDataset re-serializes the cached series as canonical CSV.
func (s *Server) handleExportDataset(w http.ResponseWriter, r *http.Request) {
	out, ok := s.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Dataset.ID+`.csv"`)
	if err := out.Dataset.Series.WriteCSV(w); err != nil {
		s.logger.Error("csv export failed", "dataset_id", out.Dataset.ID, "error", err)
	}
}

func (s *Server) handleDatasetStats(w http.ResponseWriter, r *http.Request) {
	out, ok := s.lookup(w, r)
	if !ok {
		return
	}

	column := chi.URLParam(r, "column")
	stats, ok := out.Dataset.Series.Stats(column)
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "NotFound", Message: "no such column: " + column})
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, stats)
}

// lookup resolves the {id} route param against the memoization store. Cached
// failures replay as the same tagged error; unknown IDs are 404 (the store
// holds nothing across restarts or past eviction, so consumers re-upload).
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (store.Outcome, bool) {
	id := chi.URLParam(r, "id")
	out, ok := s.processor.Lookup(id)
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "NotFound", Message: "unknown dataset: " + id})
		return store.Outcome{}, false
	}
	if out.Err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, errorResponse{Error: domain.ErrorName(out.Err), Message: out.Err.Error()})
		return store.Outcome{}, false
	}
	return out, true
}

// readUpload extracts the upload bytes and filename hint from either a
// multipart form or the raw request body. The filename hint is advisory;
// format handling is content-sniffed downstream.
func (s *Server) readUpload(r *http.Request) (domain.Upload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.maxBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return domain.Upload{}, errors.New(`multipart upload must carry a "file" field`)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return domain.Upload{}, err
		}
		return domain.Upload{Filename: header.Filename, Data: data}, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.Upload{}, err
	}
	return domain.Upload{Data: data}, nil
}
