package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/run-advisory-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/run-advisory-service/internal/adapter/kafka"
	"github.com/couchcryptid/run-advisory-service/internal/adapter/mapbox"
	mqttadapter "github.com/couchcryptid/run-advisory-service/internal/adapter/mqtt"
	"github.com/couchcryptid/run-advisory-service/internal/adapter/ntfy"
	"github.com/couchcryptid/run-advisory-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/run-advisory-service/internal/advisor"
	"github.com/couchcryptid/run-advisory-service/internal/config"
	"github.com/couchcryptid/run-advisory-service/internal/domain"
	"github.com/couchcryptid/run-advisory-service/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	forecast := openmeteo.NewClient(cfg.WeatherBaseURL, cfg.AirQualityBaseURL, cfg.HTTPTimeout, metrics, logger)

	notifier, closeNotifier := newNotifier(cfg, logger)
	defer func() {
		if err := closeNotifier(); err != nil {
			logger.Error("notifier close error", "error", err)
		}
	}()

	a := advisor.New(advisor.SettingsFromConfig(cfg), forecast, forecast, notifier, geocoder, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunMode == config.RunModeServe {
		serve(ctx, cfg, a, logger)
		return 0
	}
	return runOnce(ctx, a)
}

// newNotifier selects the delivery backend. The returned close func releases
// any broker connection.
func newNotifier(cfg *config.Config, logger *slog.Logger) (advisor.Notifier, func() error) {
	noop := func() error { return nil }
	if cfg.DryRun {
		logger.Info("dry run enabled, notifications are logged only")
		return advisor.NewLogNotifier(logger), noop
	}

	switch cfg.NotifyBackend {
	case config.BackendKafka:
		w := kafkaadapter.NewWriter(cfg, logger)
		logger.Info("notifying via kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.NotifyTopic)
		return w, w.Close
	case config.BackendMQTT:
		p := mqttadapter.NewPublisher(cfg, logger)
		logger.Info("notifying via mqtt", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort, "topic", cfg.NotifyTopic)
		return p, p.Close
	default:
		logger.Info("notifying via ntfy", "base_url", cfg.NtfyBaseURL, "topic", cfg.NotifyTopic)
		return ntfy.NewNotifier(cfg.NtfyBaseURL, cfg.NtfyToken, cfg.HTTPTimeout, logger), noop
	}
}

// runOnce performs a single run and prints the report to stdout. It returns
// the process exit code.
func runOnce(ctx context.Context, a *advisor.Advisor) int {
	report, err := a.Run(ctx)
	if encErr := writeReport(os.Stdout, report); encErr != nil {
		slog.Error("failed to write report", "error", encErr)
	}
	if err != nil {
		return 1
	}
	return 0
}

func writeReport(w io.Writer, report domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// serve exposes POST /run for HTTP schedulers until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, a *advisor.Advisor, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, a, logger)

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
