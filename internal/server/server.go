// Package server exposes the passage pool over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/typer/internal/pool"
)

// Path is the generation endpoint.
const Path = "/generate"

// Defaults for the generation limiter.
const (
	DefaultRateLimit = 2.0
	DefaultBurst     = 4
	maxBodyBytes     = 4 << 10
)

// Passages is the pool surface the handler needs.
type Passages interface {
	Available() bool
	Next(ctx context.Context, req pool.Request) (string, int, error)
}

// GenerateResponse is the POST success body.
type GenerateResponse struct {
	Text          string `json:"text"`
	PoolRemaining int    `json:"poolRemaining"`
}

// StatusResponse is the GET body when a backend is configured.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Config tunes the handler.
type Config struct {
	// RateLimit is POST requests per second; 0 disables limiting.
	RateLimit float64
	Burst     int
}

// Handler serves GET and POST on Path.
type Handler struct {
	passages Passages
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewHandler wires the endpoint to passages.
func NewHandler(passages Passages, cfg Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{passages: passages, logger: logger}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return h
}

// Routes returns a mux with the endpoint mounted.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	return mux
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	w = rec
	w.Header().Set("X-Request-Id", reqID)

	switch r.Method {
	case http.MethodGet:
		h.status(w)
	case http.MethodPost:
		h.generate(w, r, reqID)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	}

	h.logger.Info("request",
		zap.String("request_id", reqID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("took", time.Since(start)),
	)
}

func (h *Handler) status(w http.ResponseWriter) {
	if !h.passages.Available() {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "API key not configured"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "available"})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, reqID string) {
	if !h.passages.Available() {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "API key not configured"})
		return
	}
	if h.limiter != nil && !h.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests"})
		return
	}

	var req pool.Request
	if r.Body != nil {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}
	}

	text, remaining, err := h.passages.Next(r.Context(), req)
	if err != nil {
		if errors.Is(err, pool.ErrUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "API key not configured"})
			return
		}
		h.logger.Error("generation failed",
			zap.String("request_id", reqID),
			zap.String("key", req.Key()),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate text"})
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Text: text, PoolRemaining: remaining})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
