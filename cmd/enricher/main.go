package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/quailmap/place-enrich/internal/adapter/http"
	kafkaadapter "github.com/quailmap/place-enrich/internal/adapter/kafka"
	"github.com/quailmap/place-enrich/internal/adapter/nominatim"
	"github.com/quailmap/place-enrich/internal/config"
	"github.com/quailmap/place-enrich/internal/domain"
	"github.com/quailmap/place-enrich/internal/observability"
	"github.com/quailmap/place-enrich/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via NOMINATIM_ENABLED / NOMINATIM_ENDPOINT).
	var geocoder domain.Geocoder
	if cfg.NominatimEnabled {
		client, err := nominatim.NewClient(cfg.NominatimEndpoint, nominatim.Options{
			Timeout:          cfg.NominatimTimeout,
			QueriesPerSecond: cfg.NominatimQPS,
			RetryCount:       cfg.NominatimRetries,
			PoolSize:         cfg.NominatimPoolSize,
			Backoff:          cfg.NominatimBackoff,
		}, logger, metrics)
		if err != nil {
			logger.Error("failed to create geocoding client", "error", err)
			os.Exit(1)
		}
		geocoder = client
		metrics.GeocodeEnabled.Set(1)
		logger.Info("nominatim geocoding enabled",
			"qps", cfg.NominatimQPS,
			"timeout", cfg.NominatimTimeout,
			"retries", cfg.NominatimRetries)
	} else {
		logger.Info("nominatim geocoding disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(geocoder, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, cfg.NominatimEnabled, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start enrichment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
