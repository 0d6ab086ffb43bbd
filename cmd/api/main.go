// Package main provides the entrypoint for the ClearSight API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/clearsight/clearsight/internal/advisory"
	"github.com/clearsight/clearsight/internal/api"
	"github.com/clearsight/clearsight/internal/api/handler"
	"github.com/clearsight/clearsight/internal/api/middleware"
	"github.com/clearsight/clearsight/internal/config"
	"github.com/clearsight/clearsight/internal/database"
	"github.com/clearsight/clearsight/internal/gateway"
	"github.com/clearsight/clearsight/internal/insight"
	"github.com/clearsight/clearsight/internal/insight/gemini"
	"github.com/clearsight/clearsight/internal/provider/resilience"
	"github.com/clearsight/clearsight/internal/source/cpcb"
	"github.com/clearsight/clearsight/internal/source/curated"
	"github.com/clearsight/clearsight/internal/source/openaq"
	"github.com/clearsight/clearsight/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "clearsight-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ClearSight API")

	cfg := config.FromEnv()

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	sourceMetrics, err := middleware.NewSourceMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize source metrics")
		os.Exit(1)
	}

	// Source health registry for the status endpoint
	registry := resilience.NewRegistry()

	var checks []handler.DependencyCheck

	// Curated station source: PostgreSQL when a database is configured,
	// otherwise the bundled JSON dataset.
	var curatedSource gateway.StationSource
	if os.Getenv("DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		curatedSource = curated.NewPostgresSource(pool)
		checks = append(checks, handler.DependencyCheck{
			Name:  "postgres",
			Check: pool.Ping,
		})
	} else {
		curatedSource = curated.NewFileSource(cfg.CuratedStationsPath)
		log.Info().
			Str("path", cfg.CuratedStationsPath).
			Msg("using file-backed curated stations")
	}

	// Live governmental feed
	cpcbHTTPConfig := resilience.DefaultClientConfig("cpcb")
	cpcbHTTPConfig.Registry = registry
	cpcbClient := cpcb.NewClient(cpcb.ClientConfig{
		FeedURL:    cfg.CPCBFeedURL,
		HTTPClient: resilience.NewClient(cpcbHTTPConfig),
	})

	// Secondary public API
	openaqHTTPConfig := resilience.DefaultClientConfig("openaq")
	openaqHTTPConfig.Registry = registry
	openaqClient := openaq.NewClient(openaq.ClientConfig{
		BaseURL:    cfg.OpenAQBaseURL,
		APIKey:     cfg.OpenAQAPIKey,
		HTTPClient: resilience.NewClient(openaqHTTPConfig),
		Logger:     log,
	})

	// Reading cache: shared Redis when configured, in-process otherwise
	var cache gateway.Cache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = gateway.NewRedisCache(redisClient, cfg.CacheTTL, log)
		checks = append(checks, handler.DependencyCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		})
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis reading cache")
	} else {
		cache = gateway.NewMemoryCache()
	}

	gatewayService := gateway.NewService(gateway.Config{
		Curated:   curatedSource,
		LiveFeed:  cpcbClient,
		Secondary: openaqClient,
		Cache:     cache,
		CacheTTL:  cfg.CacheTTL,
		Metrics:   sourceMetrics,
		Logger:    log,
	})
	log.Info().Msg("air quality gateway initialized")

	// Narrative insight backend
	var insightGenerator insight.Generator = insight.Disabled{}
	if cfg.GeminiAPIKey != "" {
		geminiHTTPConfig := resilience.DefaultClientConfig("gemini")
		geminiHTTPConfig.Registry = registry
		insightGenerator = gemini.NewClient(gemini.ClientConfig{
			APIKey:     cfg.GeminiAPIKey,
			HTTPClient: resilience.NewClient(geminiHTTPConfig),
			Logger:     log,
		})
		log.Info().Msg("Gemini insight generator initialized")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - AI insights disabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		Gateway:           gatewayService,
		AdvisoryGenerator: advisory.NewGenerator(nil),
		Insight:           insightGenerator,
		Registry:          registry,
		Checks:            checks,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
