// Package server exposes pipeline analysis over HTTP.
//
// The API mirrors what the visual editor expects:
//
//	GET  /                -> connectivity probe, {"Ping": "Pong"}
//	POST /pipelines/parse -> analyze a pipeline document, returns the report
//	GET  /healthz         -> liveness probe
//	GET  /metrics         -> prometheus metrics
//
// Every error response carries the same JSON body, a human-readable "detail"
// plus a stable machine-readable "code".
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/matzehuels/pipecheck/internal/config"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// Server serves the pipeline analysis API.
type Server struct {
	cfg    *config.Config
	runner *pipeline.Runner
	logger *log.Logger

	http *http.Server
}

// New creates a server. Nil arguments fall back to defaults, which makes
// construction in tests painless.
func New(cfg *config.Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil, logger)
	}
	registerMetricsHooks()
	return &Server{cfg: cfg, runner: runner, logger: logger}
}

// Router builds the HTTP routing table with the full middleware stack.
// Health and metrics endpoints sit outside the rate limit so probes and
// scrapers are never throttled by a busy editor.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Group(func(r chi.Router) {
		if s.cfg.Server.RateLimit > 0 {
			limiter := rate.NewLimiter(rate.Limit(s.cfg.Server.RateLimit), s.cfg.Server.RateBurst)
			r.Use(s.rateLimit(limiter))
		}
		r.Use(s.bodyLimit)

		r.Get("/", s.handlePing)
		r.Post("/pipelines/parse", s.handleParse)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start runs the server until ctx is canceled, then drains in-flight
// requests within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.logger.Info("server listening", "addr", s.cfg.Server.Addr)
		if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr, err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return eg.Wait()
}
