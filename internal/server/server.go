// Package server exposes the dictation pipeline to the finance tracker's
// web UI: a websocket endpoint per dictation attempt, plus liveness,
// readiness and metrics endpoints.
//
// The server is the "host" side of the session callback contract. For each
// websocket connection it builds a wsbridge engine, runs exactly one
// session, mirrors session events back to the client as JSON, and — inside
// the session's OnEnd — fetches the user's catalogs and runs transaction
// extraction exactly once.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ndhoang91/voicap/internal/catalog"
	"github.com/ndhoang91/voicap/internal/config"
	"github.com/ndhoang91/voicap/internal/extract"
	"github.com/ndhoang91/voicap/internal/normalize"
	"github.com/ndhoang91/voicap/internal/observe"
)

// readyCheckTimeout bounds each readiness probe dependency check.
const readyCheckTimeout = 5 * time.Second

// Server wires the dictation pipeline to HTTP.
type Server struct {
	recognition config.RecognitionConfig
	catalogs    catalog.Store
	normalizer  *normalize.Normalizer
	extractor   *extract.Extractor
	metrics     *observe.Metrics
}

// Config holds the dependencies for a [Server].
type Config struct {
	Recognition config.RecognitionConfig
	Catalogs    catalog.Store
	Normalizer  *normalize.Normalizer
	Extractor   *extract.Extractor
	Metrics     *observe.Metrics
}

// New creates a Server. Nil Normalizer, Extractor and Metrics fall back to
// package defaults.
func New(cfg Config) *Server {
	s := &Server{
		recognition: cfg.Recognition,
		catalogs:    cfg.Catalogs,
		normalizer:  cfg.Normalizer,
		extractor:   cfg.Extractor,
		metrics:     cfg.Metrics,
	}
	if s.normalizer == nil {
		s.normalizer = normalize.New()
	}
	if s.extractor == nil {
		s.extractor = extract.New()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the HTTP handler serving all endpoints:
//
//	GET /healthz       — liveness probe.
//	GET /readyz        — readiness probe (checks the catalog store).
//	GET /metrics       — Prometheus scrape endpoint.
//	GET /v1/dictation  — websocket dictation session.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/dictation", s.handleDictation)
	return mux
}

// healthResult is the JSON response body for the probe endpoints.
type healthResult struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealthz is the liveness probe; a process that can serve HTTP is
// considered alive.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResult{Status: "ok"})
}

// handleReadyz reports ready only when the catalog store answers, since
// extraction quality depends on it.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	res := healthResult{Status: "ok", Checks: map[string]string{"catalog": "ok"}}
	status := http.StatusOK
	if _, err := s.catalogs.Categories(ctx); err != nil {
		res.Status = "fail"
		res.Checks["catalog"] = "fail: " + err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// writeJSON encodes v as JSON and writes it with the given status code. On
// encoding failure it falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
