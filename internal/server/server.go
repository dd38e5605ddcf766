// Package server exposes dashboards over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voyagen/tubestats/internal/config"
	"github.com/voyagen/tubestats/internal/metrics"
	"github.com/voyagen/tubestats/internal/ratelimit"
	"github.com/voyagen/tubestats/internal/service"
	"github.com/voyagen/tubestats/internal/store"
	"github.com/voyagen/tubestats/internal/validation"
)

// Deps are the collaborators of a Server. Tables is required.
type Deps struct {
	Tables     *store.TableCache
	Dashboards service.Dashboards // defaults to a DashboardService over Tables
	Reloader   *service.Reloader  // defaults to a Reloader without Redis
	Logger     *slog.Logger
	Metrics    *metrics.Metrics    // nil disables request metrics
	Gatherer   prometheus.Gatherer // nil leaves /metrics unrouted
}

// Server holds dependencies for the HTTP API.
type Server struct {
	cfg        *config.Config
	tables     *store.TableCache
	dashboards service.Dashboards
	reloader   *service.Reloader
	log        *slog.Logger
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer
	limiter    *ratelimit.KeyedLimiter // nil when rate limiting is off
	validate   *validation.Validator
	router     *chi.Mux
}

// New creates a Server and registers routes.
func New(cfg *config.Config, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Dashboards == nil {
		d.Dashboards = service.NewDashboardService(d.Tables, cfg.TopN)
	}
	if d.Reloader == nil {
		d.Reloader = service.NewReloader(d.Tables, nil, d.Logger)
	}
	s := &Server{
		cfg:        cfg,
		tables:     d.Tables,
		dashboards: d.Dashboards,
		reloader:   d.Reloader,
		log:        d.Logger,
		metrics:    d.Metrics,
		gatherer:   d.Gatherer,
		validate:   validation.New(),
		router:     chi.NewRouter(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = ratelimit.New(cfg.RateLimit, max(cfg.RateBurst, 1))
	}
	s.setupMiddleware()
	s.routes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.withLogging)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
}

func (s *Server) routes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Docs
		r.Get("/docs", handleSwaggerUI)
		r.Get("/docs/openapi.yaml", handleOpenAPISpec)

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.withRateLimit)
			}

			r.Get("/options", s.handleOptions)

			// Views
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/summary", s.handleSummary)
			r.Get("/distribution", s.handleDistribution)
			r.Get("/top", s.handleTop)
			r.Get("/earnings", s.handleEarnings)
			r.Get("/channels", s.handleChannels)

			// Table lifecycle
			r.Post("/reload", s.handleReload)
			r.Delete("/cache", s.handleClearCache)
		})
	})

	if s.gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	defer s.Close()

	addr := ":" + s.cfg.ServerPort
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown", "error", err)
		}
	}()

	s.log.Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}
