// Package advisor runs one fetch-classify-notify cycle per invocation.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/run-advisory-service/internal/config"
	"github.com/couchcryptid/run-advisory-service/internal/domain"
	"github.com/couchcryptid/run-advisory-service/internal/observability"
)

// Run failure classes. Both are fatal for the run; there is no retry.
var (
	ErrUpstream = errors.New("upstream")
	ErrDelivery = errors.New("delivery")
)

// WeatherSource supplies hourly temperature, humidity and wind speed.
type WeatherSource interface {
	FetchWeather(ctx context.Context, loc domain.Location) (domain.HourlySeries, error)
}

// AirQualitySource supplies the hourly AQI and particulate concentrations.
type AirQualitySource interface {
	FetchAirQuality(ctx context.Context, loc domain.Location) (domain.HourlySeries, error)
}

// Notifier delivers a notification to the push endpoint.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// Settings is the per-deployment input of a run.
type Settings struct {
	Location   domain.Location
	TargetHour int // -1 evaluates the current hour
	AQIMode    domain.AQIMode
	Format     domain.MessageFormat
	Topic      string
}

// SettingsFromConfig maps the environment configuration onto run settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Location:   cfg.Location,
		TargetHour: cfg.TargetHour,
		AQIMode:    cfg.AQIMode,
		Format:     domain.MessageFormat{Greeting: cfg.Greeting},
		Topic:      cfg.NotifyTopic,
	}
}

// Advisor orchestrates a single advisory run.
type Advisor struct {
	settings Settings
	weather  WeatherSource
	air      AirQualitySource
	notifier Notifier
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates an Advisor. geocoder may be nil when the location is fully
// configured.
func New(s Settings, weather WeatherSource, air AirQualitySource, notifier Notifier, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Advisor {
	return &Advisor{
		settings: s,
		weather:  weather,
		air:      air,
		notifier: notifier,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a run has delivered a notification.
func (a *Advisor) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return errors.New("no successful run yet")
	}
	return nil
}

// Run evaluates the target slot and delivers the notification. The returned
// report is populated as far as the run got, including on error.
func (a *Advisor) Run(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	report := domain.Report{RunID: uuid.NewString()}
	logger := a.logger.With("run_id", report.RunID)

	report, err := a.run(ctx, report, logger)
	a.metrics.RunDuration.Observe(time.Since(start).Seconds())
	a.metrics.RunsTotal.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		report.Error = err.Error()
		logger.Error("advisory run failed", "error", err, "duration", time.Since(start))
		return report, err
	}

	report.OK = true
	a.ready.Store(true)
	a.metrics.LastSuccess.SetToCurrentTime()
	logger.Info("advisory run complete",
		"slot", report.Slot.Prefix(),
		"verdict", report.Verdict.Text,
		"aqi", report.Reading.AQI.String(),
		"aqi_source", report.Reading.AQISource,
		"duration", time.Since(start),
	)
	return report, nil
}

func (a *Advisor) run(ctx context.Context, report domain.Report, logger *slog.Logger) (domain.Report, error) {
	loc, err := domain.ResolveLocation(ctx, a.settings.Location, a.geocoder, logger)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	report.Slot = a.slot(loc)
	logger.Debug("evaluating slot", "slot", report.Slot.Prefix(), "location", loc.Name)

	weather, air, err := a.fetch(ctx, loc)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	report.Reading = domain.ResolveReading(weather, air, report.Slot, a.settings.AQIMode)
	verdict := domain.ClassifyReading(report.Reading)
	report.Verdict = &verdict
	a.metrics.Verdicts.WithLabelValues(verdict.Icon.String()).Inc()
	a.metrics.AQISource.WithLabelValues(aqiSourceLabel(report.Reading.AQISource)).Inc()

	format := a.settings.Format
	if format.Location == "" {
		format.Location = loc.Name
	}
	report.Message = format.Format(report.Slot, report.Reading, verdict)

	n := domain.Notification{
		RunID:   report.RunID,
		Topic:   a.settings.Topic,
		Title:   format.Title(report.Slot),
		Message: report.Message,
		Icon:    verdict.Icon,
	}
	if err := a.notifier.Notify(ctx, n); err != nil {
		a.metrics.NotifyErrors.Inc()
		return report, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	a.metrics.NotificationsOK.Inc()
	return report, nil
}

// slot derives the target slot in the location's zone, honouring a fixed
// target hour when configured.
func (a *Advisor) slot(loc domain.Location) domain.TargetSlot {
	slot := domain.CurrentSlot(loc.Zone())
	if a.settings.TargetHour >= 0 {
		slot = slot.WithHour(a.settings.TargetHour)
	}
	return slot
}

// fetch requests weather and air quality concurrently. The first failure
// cancels the other request.
func (a *Advisor) fetch(ctx context.Context, loc domain.Location) (weather, air domain.HourlySeries, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weather, err = a.weather.FetchWeather(gctx, loc)
		return err
	})
	g.Go(func() error {
		var err error
		air, err = a.air.FetchAirQuality(gctx, loc)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.HourlySeries{}, domain.HourlySeries{}, err
	}
	return weather, air, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrDelivery):
		return "delivery_error"
	default:
		return "error"
	}
}

func aqiSourceLabel(source string) string {
	if source == "" {
		return "none"
	}
	return source
}
