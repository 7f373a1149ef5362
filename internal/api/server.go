package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-swot/internal/analysis"
	"github.com/JakeFAU/site-swot/internal/auth"
	"github.com/JakeFAU/site-swot/internal/config"
	"github.com/JakeFAU/site-swot/internal/metrics"
)

const maxRequestBodyBytes = 64 << 10

// Analyzer produces a report for a URL.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (analysis.Report, error)
}

// Server wires HTTP handlers to the analyzer.
type Server struct {
	router   chi.Router
	analyzer Analyzer
	verifier auth.Verifier
	cfg      config.Config
	logger   *zap.Logger
}

type analyzeRequest struct {
	URL string `json:"url"`
}

// NewServer constructs a Server with middleware and routes. A nil verifier
// leaves the analyze routes unauthenticated.
func NewServer(
	analyzer Analyzer,
	verifier auth.Verifier,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		analyzer: analyzer,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if cfg.Server.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(cfg.Server.RequestTimeout))
		}
		if verifier != nil {
			r.Use(authMiddleware(verifier, logger))
		}
		r.Post("/analyze", s.analyze)
		r.Post("/v1/analyze", s.analyze)
	})

	if cfg.Server.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// No downstream dependencies are held open between requests.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "Request body must be a JSON object")
		return
	}

	start := time.Now()
	report, err := s.analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		status, code, msg := classifyError(err)
		logFn := s.logger.Info
		if status >= http.StatusInternalServerError {
			logFn = s.logger.Error
		}
		logFn("analysis failed",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.String("url", req.URL),
			zap.String("code", code),
			zap.Error(err),
		)
		writeError(w, status, code, msg)
		return
	}

	s.logger.Debug("analysis served",
		zap.String("request_id", requestIDFromContext(r.Context())),
		zap.String("url", req.URL),
		zap.Duration("duration", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, report)
}
