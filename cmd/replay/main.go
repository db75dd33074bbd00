// Command replay runs the advisory against saved Open-Meteo responses at a
// fixed point in time. Nothing is delivered; the notification is logged and
// the run report is printed to stdout.
//
// Usage:
//
//	go run ./cmd/replay \
//	  -weather internal/adapter/openmeteo/testdata/forecast.json \
//	  -air internal/adapter/openmeteo/testdata/air_quality.json \
//	  -at 2024-04-26T06:10:00+09:00
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"

	"github.com/couchcryptid/run-advisory-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/run-advisory-service/internal/advisor"
	"github.com/couchcryptid/run-advisory-service/internal/domain"
	"github.com/couchcryptid/run-advisory-service/internal/observability"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	weatherPath := fs.String("weather", "", "saved /v1/forecast response")
	airPath := fs.String("air", "", "saved /v1/air-quality response")
	at := fs.String("at", "", "evaluation time, RFC 3339")
	tz := fs.String("tz", "Asia/Seoul", "IANA time zone of the location")
	mode := fs.String("mode", string(domain.AQIModeAuto), "AQI mode: auto, index or concentration")
	name := fs.String("location", "Seoul", "location label in the message")
	lat := fs.Float64("lat", 37.5665, "latitude")
	lon := fs.Float64("lon", 126.978, "longitude")
	hour := fs.Int("hour", -1, "target hour (0-23), -1 for the hour of -at")
	greeting := fs.String("greeting", "", "message greeting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *weatherPath == "" || *airPath == "" || *at == "" {
		fs.Usage()
		return errors.New("missing required flags: -weather, -air, -at")
	}

	zone, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("invalid -tz: %w", err)
	}
	now, err := time.Parse(time.RFC3339, *at)
	if err != nil {
		return fmt.Errorf("invalid -at: %w", err)
	}
	aqiMode, err := domain.ParseAQIMode(*mode)
	if err != nil {
		return err
	}
	if *hour < -1 || *hour > 23 {
		return errors.New("invalid -hour (0-23)")
	}

	src, err := loadSource(*weatherPath, *airPath)
	if err != nil {
		return err
	}

	// Set a fixed clock so the target slot comes from -at.
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo, TimeFormat: time.Kitchen}))
	settings := advisor.Settings{
		Location:   domain.Location{Name: *name, Lat: *lat, Lon: *lon, TimeZone: zone},
		TargetHour: *hour,
		AQIMode:    aqiMode,
		Format:     domain.MessageFormat{Greeting: *greeting},
		Topic:      "replay",
	}
	a := advisor.New(settings, src, src, advisor.NewLogNotifier(logger), nil, logger, observability.NewMetricsForTesting())

	report, runErr := a.Run(context.Background())

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	return runErr
}

// fileSource serves series decoded from saved API responses.
type fileSource struct {
	weather domain.HourlySeries
	air     domain.HourlySeries
}

func (s *fileSource) FetchWeather(context.Context, domain.Location) (domain.HourlySeries, error) {
	return s.weather, nil
}

func (s *fileSource) FetchAirQuality(context.Context, domain.Location) (domain.HourlySeries, error) {
	return s.air, nil
}

func loadSource(weatherPath, airPath string) (*fileSource, error) {
	weather, err := decodeFile(weatherPath, openmeteo.DecodeWeather)
	if err != nil {
		return nil, err
	}
	air, err := decodeFile(airPath, openmeteo.DecodeAirQuality)
	if err != nil {
		return nil, err
	}
	return &fileSource{weather: weather, air: air}, nil
}

func decodeFile(path string, decode func(io.Reader) (domain.HourlySeries, error)) (domain.HourlySeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.HourlySeries{}, err
	}
	defer f.Close()

	s, err := decode(f)
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
