package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	httpadapter "github.com/couchcryptid/asthma-forecast-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/asthma-forecast-service/internal/adapter/kafka"
	mongoadapter "github.com/couchcryptid/asthma-forecast-service/internal/adapter/mongo"
	"github.com/couchcryptid/asthma-forecast-service/internal/config"
	"github.com/couchcryptid/asthma-forecast-service/internal/forecast"
	"github.com/couchcryptid/asthma-forecast-service/internal/model"
	"github.com/couchcryptid/asthma-forecast-service/internal/observability"
	"github.com/couchcryptid/asthma-forecast-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := mongoadapter.Connect(connectCtx, cfg)
	connectCancel()
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}

	scorer, err := model.Load(cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load model artifact", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}
	if scorer.Target() != cfg.Target {
		logger.Error("model artifact target does not match TARGET", "artifact", scorer.Target(), "configured", cfg.Target)
		os.Exit(1)
	}
	logger.Info("model loaded", "path", cfg.ModelPath, "target", scorer.Target(), "features", scorer.NumFeatures())

	envStore := store.NewCachedEnvStore(db.Environmental(), cfg.EnvCacheSize,
		func() { metrics.EnvCache.WithLabelValues("hit").Inc() },
		func() { metrics.EnvCache.WithLabelValues("miss").Inc() },
	)

	orch := forecast.NewOrchestrator(envStore, scorer, cfg.Target, cfg.DefaultLocation, logger, metrics)

	// Prediction events are feature-flagged via KAFKA_ENABLED.
	var sink forecast.EventSink
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		sink = publisher
		logger.Info("prediction event publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("prediction event publishing disabled")
	}

	runner := forecast.NewRunner(db.Users(), db.Predictions(), orch, sink, cfg.WorkerPoolSize, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, db, httpadapter.Options{
		Target:       cfg.Target,
		BatchTimeout: cfg.BatchTimeout,
		RateLimit:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		Development:  cfg.IsDevelopment(),
	}, logger, metrics)

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
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := db.Close(shutdownCtx); err != nil {
		logger.Error("mongodb disconnect error", "error", err)
	}

	logger.Info("shutdown complete")
}
