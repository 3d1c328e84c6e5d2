// Package server provides the HTTP server for the recommendation API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/forkcast/v1/internal/infrastructure/config"
	"github.com/forkcast/v1/internal/infrastructure/http/handlers"
	"github.com/forkcast/v1/internal/infrastructure/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server.
type Server struct {
	config    *config.Config
	logger    *zap.Logger
	router    *chi.Mux
	server    *http.Server
	recommend *handlers.RecommendHandlers
	health    *handlers.HealthHandlers
	registry  *prometheus.Registry
}

// NewServer creates a new HTTP server instance.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	recommendHandlers *handlers.RecommendHandlers,
	healthHandlers *handlers.HealthHandlers,
	registry *prometheus.Registry,
) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		recommend: recommendHandlers,
		health:    healthHandlers,
		registry:  registry,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	return s
}

// setupRouter configures the HTTP router with middleware and routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Provider calls dominate request latency; the route timeout must stay
	// above one primary attempt plus one fallback retry.
	r.Use(chimiddleware.Timeout(2*s.config.AI.RequestTimeout + 10*time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health.Health)

		// Every remaining endpoint reaches a paid provider; keep the rate
		// limit in front of all of them.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.config.Server.RateLimitRPS, s.config.Server.RateLimitBurst))
			r.Post("/recommend", s.recommend.Recommend)
			r.Post("/weekly-brief", s.recommend.WeeklyBrief)
			r.Get("/weekly-brief/{userID}", s.recommend.WeeklySet)
		})
	})

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return r
}

// Router exposes the configured router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
