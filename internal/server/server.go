// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes extraction over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/govmeta/internal/extract"
	"github.com/pdiddy/govmeta/internal/fetch"
	"github.com/pdiddy/govmeta/internal/logger"
	"github.com/pdiddy/govmeta/internal/store"
	"github.com/pdiddy/govmeta/pkg/types"
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// Records looks up stored documents by ID.
type Records interface {
	Get(ctx context.Context, id string) (*types.Record, error)
}

// Server routes extraction requests to a fetch client.
type Server struct {
	cfg      types.ServerConfig
	client   *fetch.Client
	records  Records
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithRecords enables GET /v1/documents/{id}.
func WithRecords(r Records) Option {
	return func(s *Server) { s.records = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// New creates a Server.
func New(cfg types.ServerConfig, client *fetch.Client, opts ...Option) *Server {
	s := &Server{cfg: cfg, client: client}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}
		r.Post("/extract", s.handleExtract)
		r.Get("/fetch", s.handleFetch)
		if s.records != nil {
			r.Get("/documents/{id}", s.handleDocument)
		}
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Slog().Handler(), slog.LevelError),
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtract expands and extracts a JSON-LD payload posted as the body.
// The optional base query parameter resolves relative IRIs.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body := r.Body
	if limit := s.client.Config().MaxBodyBytes; limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	payload, err := io.ReadAll(body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			err = &maxBytesError{limit: mbe.Limit}
		}
		s.metrics.observe("extract", start, err)
		s.writeError(w, r, err)
		return
	}

	doc, err := s.client.Decode(r.Context(), payload, r.URL.Query().Get("base"))
	s.metrics.observe("extract", start, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type fetchResponse struct {
	Source      string          `json:"source"`
	ResolvedURL string          `json:"resolved_url"`
	Hash        string          `json:"hash"`
	Document    *types.Document `json:"document"`
}

// handleFetch retrieves ?source= and extracts it. expect_hash enforces the
// anchor digest. Only remote sources are served; local paths never reach
// the client.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing source parameter"})
		return
	}
	if st, _ := fetch.Classify(source); st != fetch.SourceHTTP && st != fetch.SourceIPFS {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: fmt.Sprintf("unsupported source %q: use an http(s) or ipfs URL", source),
			Stage: string(fetch.StageRetrieve),
		})
		return
	}

	var opts []fetch.FetchOption
	if h := r.URL.Query().Get("expect_hash"); h != "" {
		opts = append(opts, fetch.ExpectHash(h))
	}

	start := time.Now()
	res, err := s.client.Fetch(r.Context(), source, opts...)
	s.metrics.observe("fetch", start, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fetchResponse{
		Source:      res.Source,
		ResolvedURL: res.ResolvedURL,
		Hash:        res.Hash,
		Document:    res.Document,
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.records.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
			return
		}
		s.log.Error("loading document", "id", id, "error", err, "request_id", RequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
	Path  string `json:"path,omitempty"`
	Value string `json:"value,omitempty"`
}

type maxBytesError struct{ limit int64 }

func (e *maxBytesError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.limit)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Warn("request failed", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, body)
}

// classify maps an error to a status code and response body.
func classify(err error) (int, errorBody) {
	body := errorBody{Error: err.Error(), Stage: string(fetch.StageOf(err))}

	var ee *extract.Error
	if errors.As(err, &ee) {
		body.Kind = string(ee.Kind)
		body.Field = ee.Field
		body.Path = ee.Path
		body.Value = ee.Value
		return http.StatusUnprocessableEntity, body
	}

	var mbe *maxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge, body
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, body
	case errors.Is(err, fetch.ErrUnsupportedSource):
		return http.StatusBadRequest, body
	case errors.Is(err, fetch.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, body
	}

	switch fetch.StageOf(err) {
	case fetch.StageHash, fetch.StageParse, fetch.StageExpand, fetch.StageRoot, fetch.StageExtract:
		return http.StatusUnprocessableEntity, body
	case fetch.StageRetrieve:
		return http.StatusBadGateway, body
	}
	return http.StatusInternalServerError, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type ctxKey struct{}

// RequestID returns the request ID stored by the middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestID propagates an incoming X-Request-ID or assigns a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// requestLevel is debug for successes, info for client errors and warn for
// server errors.
func requestLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelWarn
	case status >= http.StatusBadRequest:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Log(r.Context(), requestLevel(ww.Status()), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", RequestID(r.Context()))
	})
}
