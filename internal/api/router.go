// Package api provides the HTTP API for ClearSight.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/clearsight/clearsight/internal/advisory"
	"github.com/clearsight/clearsight/internal/api/handler"
	"github.com/clearsight/clearsight/internal/api/middleware"
	"github.com/clearsight/clearsight/internal/gateway"
	"github.com/clearsight/clearsight/internal/insight"
	"github.com/clearsight/clearsight/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Gateway resolves AQI readings; required.
	Gateway *gateway.Service

	// AdvisoryGenerator builds personalized advisories; required.
	AdvisoryGenerator *advisory.Generator

	// Insight augments advisories with narrative text. Optional; nil
	// disables the augmentation.
	Insight insight.Generator

	// Registry reports data-source health on the status endpoint.
	// Optional.
	Registry *resilience.Registry

	// Checks are the readiness probes for /v1/ops/ready. Optional.
	Checks []handler.DependencyCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "clearsight-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Checks:    cfg.Checks,
	})
	airQualityHandler := handler.NewAirQualityHandler(cfg.Gateway)
	advisoryHandler := handler.NewAdvisoryHandler(cfg.Gateway, cfg.AdvisoryGenerator, cfg.Insight)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Air-quality endpoints - standard rate limiting
		r.Route("/air-quality", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", airQualityHandler.GetAirQuality)
			r.Get("/stations", airQualityHandler.ListStations)
		})

		// Advisory endpoint - walks the full source chain and may call
		// the narrative backend, so stricter rate limiting
		r.With(expensiveRateLimit).Post("/advisory", advisoryHandler.CreateAdvisory)
	})

	return r
}
