package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/weather-state-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-state-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-state-service/internal/adapter/openweather"
	"github.com/couchcryptid/weather-state-service/internal/appstate"
	"github.com/couchcryptid/weather-state-service/internal/config"
	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/couchcryptid/weather-state-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if cfg.WeatherKeyMissing() {
		logger.Warn("OWM_API_KEY is not set, weather requests will be rejected by the provider")
	}

	client := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)

	store := appstate.New(client, appstate.Settings{
		Location: domain.NewCoordinate(cfg.DefaultLat, cfg.DefaultLon),
		Units:    cfg.WeatherUnits,
		Lang:     cfg.WeatherLang,
	}, clockwork.NewRealClock(), logger, metrics)
	defer store.Close()

	// State change publishing (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var publisher *kafkaadapter.Publisher
	unsubscribe := func() {}
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		unsubscribe = store.Subscribe(publisher.Publish)
		logger.Info("state publishing enabled", "topic", cfg.KafkaStateTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("state publishing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initial load, then periodic refresh if configured.
	refreshDone := store.StartBackground(ctx, cfg.RefreshInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	// The publisher must outlive the last background refresh.
	<-refreshDone
	unsubscribe()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
