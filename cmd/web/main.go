package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bike-analytics/internal/config"
	"bike-analytics/internal/middleware"
	"bike-analytics/internal/observability"
	"bike-analytics/internal/server"
	"bike-analytics/internal/services"
)

const datasetLoadTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	ctx, cancel := context.WithTimeout(context.Background(), datasetLoadTimeout)
	defer cancel()

	// The dataset file is optional: when no candidate path loads, the
	// service falls back to a synthetic sample so it stays demoable. That
	// decision lives here, not inside the loader.
	records, err := services.LoadRecords(ctx, cfg.Dataset.Paths, logger)
	if err != nil {
		logger.Warn("dataset unavailable, generating sample data",
			"error", err,
			"sample_size", cfg.Dataset.SampleSize,
		)
		records = services.GenerateSample(cfg.Dataset.SampleSize)
	}

	store := services.NewStore(records, logger)
	analytics := services.NewAnalytics(store, nil, logger)
	kpis := services.NewKPIService(analytics, logger)

	srv := server.NewServer(analytics, kpis, cfg, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service")
		return nil
	})

	logger.Info("starting graceful server", "records", store.Len())
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
