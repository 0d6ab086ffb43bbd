// Package main provides the entrypoint for the ClearSight cache-warming
// worker.
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

	"github.com/clearsight/clearsight/internal/config"
	"github.com/clearsight/clearsight/internal/database"
	"github.com/clearsight/clearsight/internal/gateway"
	"github.com/clearsight/clearsight/internal/provider/resilience"
	"github.com/clearsight/clearsight/internal/source/cpcb"
	"github.com/clearsight/clearsight/internal/source/curated"
	"github.com/clearsight/clearsight/internal/source/openaq"
	"github.com/clearsight/clearsight/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "clearsight-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ClearSight worker")

	cfg := config.FromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Curated station source mirrors the API composition.
	var curatedSource gateway.StationSource
	if os.Getenv("DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		curatedSource = curated.NewPostgresSource(pool)
	} else {
		curatedSource = curated.NewFileSource(cfg.CuratedStationsPath)
	}

	cpcbHTTPConfig := resilience.DefaultClientConfig("cpcb")
	cpcbClient := cpcb.NewClient(cpcb.ClientConfig{
		FeedURL:    cfg.CPCBFeedURL,
		HTTPClient: resilience.NewClient(cpcbHTTPConfig),
	})

	openaqHTTPConfig := resilience.DefaultClientConfig("openaq")
	openaqClient := openaq.NewClient(openaq.ClientConfig{
		BaseURL:    cfg.OpenAQBaseURL,
		APIKey:     cfg.OpenAQAPIKey,
		HTTPClient: resilience.NewClient(openaqHTTPConfig),
		Logger:     log,
	})

	// The worker only pays off with a shared cache: warming an
	// in-process cache would be invisible to the API instances.
	var cache gateway.Cache
	var memoryCache *gateway.MemoryCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = gateway.NewRedisCache(redisClient, cfg.CacheTTL, log)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis reading cache")
	} else {
		memoryCache = gateway.NewMemoryCache()
		cache = memoryCache
		log.Warn().Msg("REDIS_ADDR not set - warming an in-process cache")
	}

	gatewayService := gateway.NewService(gateway.Config{
		Curated:   curatedSource,
		LiveFeed:  cpcbClient,
		Secondary: openaqClient,
		Cache:     cache,
		CacheTTL:  cfg.CacheTTL,
		Logger:    log,
	})

	warmJob := worker.NewWarmJob(worker.WarmJobConfig{
		Config:  worker.DefaultWarmConfig(),
		Gateway: gatewayService,
		Cache:   memoryCache,
		Logger:  log,
	})

	// Health check endpoint for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"OK","version":"` + Version + `"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub-driven when a subscription is configured, otherwise a
	// local ticker loop.
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if subscription != "" {
		pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        os.Getenv("PUBSUB_PROJECT_ID"),
			SubscriptionName: subscription,
			WarmJob:          warmJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if closeErr := pubsubHandler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub handler")
			}
		}()

		go func() {
			if err := pubsubHandler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub handler error")
			}
		}()
	} else {
		log.Warn().Msg("PUBSUB_SUBSCRIPTION not set - running on local warm interval")

		go func() {
			warmInterval := cfg.CacheTTL / 2
			if warmInterval < time.Minute {
				warmInterval = time.Minute
			}

			ticker := time.NewTicker(warmInterval)
			defer ticker.Stop()

			runWarm := func() {
				result := warmJob.Run(ctx)
				log.Info().
					Int("successful", result.Successful).
					Int("failed", result.Failed).
					Dur("duration", result.Duration).
					Msg("cache warm completed")
			}

			runWarm()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					runWarm()
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
