// Package server exposes the corpus, scoring and generation engines over a
// JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/corpus"
	"github.com/hooklab/content-intelligence-service/internal/generator"
	"github.com/hooklab/content-intelligence-service/internal/logging"
	"github.com/hooklab/content-intelligence-service/internal/metrics"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/scheduler"
	"github.com/hooklab/content-intelligence-service/internal/scoring"
	"github.com/hooklab/content-intelligence-service/internal/variation"
)

// StatusProvider reports the last ingestion run; *ingestion.Service
// implements it
type StatusProvider interface {
	Status(ctx context.Context) (*models.IngestionStatus, error)
}

// JobLister reports scheduled jobs; *scheduler.Scheduler implements it
type JobLister interface {
	ListJobs() []scheduler.JobInfo
}

// Services are the engines the handlers call. Ingestion and Jobs are
// optional.
type Services struct {
	Corpus     *corpus.Store
	Model      *scoring.Model
	Generator  *generator.TemplateGenerator
	Variations *variation.Engine
	Ingestion  StatusProvider
	Jobs       JobLister
}

// Server handles HTTP requests
type Server struct {
	config config.ServerConfig
	svc    Services
	server *http.Server
	log    zerolog.Logger
	now    func() time.Time
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, svc Services) *Server {
	s := &Server{
		config: cfg,
		svc:    svc,
		log:    logging.With().Str("component", "server").Logger(),
		now:    time.Now,
	}

	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Routes builds the router. Everything except /health and /metrics is rate
// limited per client IP.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.config.RateLimitRequests > 0 {
			r.Use(httprate.Limit(
				s.config.RateLimitRequests,
				s.config.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
				}),
			))
		}
		r.Use(compress)

		r.Get("/posts", s.handlePosts)
		r.Get("/stats", s.handleStats)
		r.Get("/trends", s.handleTrends)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/status", s.handleStatus)
		r.Get("/jobs", s.handleJobs)
		r.Post("/export", s.handleExport)

		r.Post("/predict", s.handlePredict)
		r.Post("/posting-time", s.handlePostingTime)
		r.Post("/competitors", s.handleCompetitors)

		r.Post("/generate", s.handleGenerate)
		r.Post("/hooks/variations", s.handleHookVariations)
		r.Post("/calendar", s.handleCalendar)

		r.Post("/variations", s.handleVariations)
		r.Post("/niches/adapt", s.handleAdaptNiches)
		r.Post("/formulas", s.handleFormulas)
		r.Post("/ab-tests", s.handleABTests)
		r.Post("/batch", s.handleBatch)
	})

	return r
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// instrument records request metrics under the matched route pattern so
// path parameters do not explode label cardinality
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), duration)

		s.log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", duration).
			Msg("request handled")
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
		"posts":  s.svc.Corpus.Len(),
	})
}
