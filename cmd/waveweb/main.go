package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/wave-bulletin-service/internal/adapter/httpapi"
	"github.com/couchcryptid/wave-bulletin-service/internal/adapter/nomads"
	"github.com/couchcryptid/wave-bulletin-service/internal/adapter/xlsx"
	"github.com/couchcryptid/wave-bulletin-service/internal/catalog"
	"github.com/couchcryptid/wave-bulletin-service/internal/config"
	"github.com/couchcryptid/wave-bulletin-service/internal/observability"
	"github.com/couchcryptid/wave-bulletin-service/internal/pipeline"
)

func main() {
	// .env is optional and only used for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	cat, err := catalog.Load(cfg.StationFile)
	if err != nil {
		logger.Error("failed to load station catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("station catalog loaded", "stations", cat.Len())

	client := nomads.NewClient(cfg.NOMADSBaseURL, cfg.FetchTimeout, logger, metrics)
	fetcher := nomads.NewCachedFetcher(client, cfg.CacheSize, metrics)
	resolver := pipeline.NewResolver(fetcher, cfg.LookbackCycles, logger, metrics)
	svc := pipeline.New(cat, fetcher, resolver, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, svc, xlsx.NewWriter(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
