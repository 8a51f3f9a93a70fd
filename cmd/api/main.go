package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-backend/config"
	"storefront-backend/internal/delivery/http/middleware"
	v1 "storefront-backend/internal/delivery/http/v1"
	"storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/repository/kvstore"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize key-value backend
	kv, closeKV, err := kvstore.Open(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.KVDriver).Msg("Failed to open key-value backend")
	}
	log.Info().Str("driver", cfg.KVDriver).Msg("Key-value backend ready")

	// Sessions live in memory while active; their state stays in the backend.
	sessionCache := cache.NewMemoryCache(cfg.SessionTTL, cfg.SessionCleanupInterval, func(key string, _ interface{}) {
		log.Debug().Str("session_id", key).Msg("Session evicted from memory")
	})
	sessions := usecase.NewSessionManager(kv, sessionCache, cfg.SessionTTL, usecase.SessionOptions{
		ComparisonLimit:  cfg.ComparisonLimit,
		CredentialSecret: cfg.CredentialSecret,
	})
	if err := sessions.RegisterMetrics(); err != nil {
		log.Warn().Err(err).Msg("Failed to register session metrics")
	}

	mux := v1.NewRouter(sessions, v1.RouterOptions{
		Driver:       cfg.KVDriver,
		SecureCookie: cfg.Env == "production",
	})

	// Stale clients are dropped after 3 minutes of silence.
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	// Apply CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart("storefront-api", cfg.KVDriver, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := closeKV(); err != nil {
		log.Error().Err(err).Msg("Failed to close key-value backend")
	}

	logger.ServiceStop("storefront-api")
}
