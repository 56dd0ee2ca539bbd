// Command ingestd serves the SmartGuard buoy export ingestion API: uploads
// are normalized through the pipeline and exposed as JSON, CSV export, and
// per-column statistics, with optional Kafka sink publishing.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/buoy-data-ingest/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/buoy-data-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/buoy-data-ingest/internal/config"
	"github.com/couchcryptid/buoy-data-ingest/internal/observability"
	"github.com/couchcryptid/buoy-data-ingest/internal/pipeline"
	"github.com/couchcryptid/buoy-data-ingest/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	format := pipeline.DefaultFormat()
	if cfg.StrictRows {
		format.Ragged = pipeline.RaggedDrop
		logger.Info("strict ragged-row policy enabled")
	}

	// Sink publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	results := store.New(cfg.CacheSize)
	proc := pipeline.NewProcessor(format, results, publisher, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, proc, proc, cfg.MaxUploadBytes, logger)

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
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
