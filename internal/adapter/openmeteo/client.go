// Package openmeteo fetches hourly weather and air-quality forecasts from the
// Open-Meteo APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/run-advisory-service/internal/domain"
	"github.com/couchcryptid/run-advisory-service/internal/observability"
)

const (
	DefaultWeatherBaseURL    = "https://api.open-meteo.com"
	DefaultAirQualityBaseURL = "https://air-quality-api.open-meteo.com"

	sourceWeather    = "weather"
	sourceAirQuality = "air_quality"
)

// Client implements the weather and air-quality sources of the advisor.
type Client struct {
	httpClient     *http.Client
	weatherBaseURL string
	airBaseURL     string
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// NewClient creates an Open-Meteo client. Empty base URLs select the public
// endpoints.
func NewClient(weatherBaseURL, airBaseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if weatherBaseURL == "" {
		weatherBaseURL = DefaultWeatherBaseURL
	}
	if airBaseURL == "" {
		airBaseURL = DefaultAirQualityBaseURL
	}
	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		weatherBaseURL: weatherBaseURL,
		airBaseURL:     airBaseURL,
		metrics:        metrics,
		logger:         logger,
	}
}

// FetchWeather returns hourly temperature (°C), relative humidity (%) and
// 10 m wind speed (m/s) in the location's local time.
func (c *Client) FetchWeather(ctx context.Context, loc domain.Location) (domain.HourlySeries, error) {
	params := locationParams(loc)
	params.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m")
	params.Set("wind_speed_unit", "ms")
	params.Set("forecast_days", "2")

	return c.fetch(ctx, sourceWeather, c.weatherBaseURL+"/v1/forecast?"+params.Encode(), DecodeWeather)
}

// FetchAirQuality returns the hourly US AQI with PM2.5 and PM10
// concentrations (µg/m³). The previous day is included so the nearest-hour
// fallback has earlier samples to work with.
func (c *Client) FetchAirQuality(ctx context.Context, loc domain.Location) (domain.HourlySeries, error) {
	params := locationParams(loc)
	params.Set("hourly", "us_aqi,pm2_5,pm10")
	params.Set("past_days", "1")
	params.Set("forecast_days", "2")

	return c.fetch(ctx, sourceAirQuality, c.airBaseURL+"/v1/air-quality?"+params.Encode(), DecodeAirQuality)
}

func locationParams(loc domain.Location) url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(loc.Lat, 'f', 4, 64)},
		"longitude": {strconv.FormatFloat(loc.Lon, 'f', 4, 64)},
		"timezone":  {loc.Zone().String()},
	}
}

func (c *Client) fetch(ctx context.Context, source, fullURL string, decode func(io.Reader) (domain.HourlySeries, error)) (domain.HourlySeries, error) {
	start := time.Now()
	series, err := c.do(ctx, fullURL, decode)
	c.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(source).Inc()
		return domain.HourlySeries{}, fmt.Errorf("%s forecast: %w", source, err)
	}
	c.logger.Debug("forecast fetched", "source", source, "hours", len(series.Times))
	return series, nil
}

func (c *Client) do(ctx context.Context, fullURL string, decode func(io.Reader) (domain.HourlySeries, error)) (domain.HourlySeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.HourlySeries{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, apiReason(body))
	}
	return decode(resp.Body)
}

// apiReason extracts the "reason" field of an Open-Meteo error body, falling
// back to the raw body.
func apiReason(body []byte) string {
	var e struct {
		Reason string `json:"reason"`
	}
	if json.Unmarshal(body, &e) == nil && e.Reason != "" {
		return e.Reason
	}
	return string(body)
}

type weatherResponse struct {
	Hourly struct {
		Time        []string       `json:"time"`
		Temperature []domain.Float `json:"temperature_2m"`
		Humidity    []domain.Float `json:"relative_humidity_2m"`
		WindSpeed   []domain.Float `json:"wind_speed_10m"`
	} `json:"hourly"`
}

type airQualityResponse struct {
	Hourly struct {
		Time []string       `json:"time"`
		AQI  []domain.Float `json:"us_aqi"`
		PM25 []domain.Float `json:"pm2_5"`
		PM10 []domain.Float `json:"pm10"`
	} `json:"hourly"`
}

var errNoHourly = errors.New("response has no hourly data")

// DecodeWeather parses a forecast API response body.
func DecodeWeather(r io.Reader) (domain.HourlySeries, error) {
	var body weatherResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return domain.HourlySeries{}, fmt.Errorf("decode response: %w", err)
	}
	if body.Hourly.Time == nil {
		return domain.HourlySeries{}, errNoHourly
	}
	s := domain.HourlySeries{
		Times:       body.Hourly.Time,
		Temperature: body.Hourly.Temperature,
		Humidity:    body.Hourly.Humidity,
		WindSpeed:   body.Hourly.WindSpeed,
	}
	if err := s.Validate(); err != nil {
		return domain.HourlySeries{}, err
	}
	return s, nil
}

// DecodeAirQuality parses an air-quality API response body. Open-Meteo
// supplies no category labels, so the series carries none.
func DecodeAirQuality(r io.Reader) (domain.HourlySeries, error) {
	var body airQualityResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return domain.HourlySeries{}, fmt.Errorf("decode response: %w", err)
	}
	if body.Hourly.Time == nil {
		return domain.HourlySeries{}, errNoHourly
	}
	s := domain.HourlySeries{
		Times: body.Hourly.Time,
		AQI:   body.Hourly.AQI,
		PM25:  body.Hourly.PM25,
		PM10:  body.Hourly.PM10,
	}
	if err := s.Validate(); err != nil {
		return domain.HourlySeries{}, err
	}
	return s, nil
}
