package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal container images

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/run-advisory-service/internal/domain"
)

// Notification backends.
const (
	BackendNtfy  = "ntfy"
	BackendKafka = "kafka"
	BackendMQTT  = "mqtt"
)

// Run modes.
const (
	RunModeOnce  = "once"
	RunModeServe = "serve"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Location   domain.Location
	TargetHour int // -1 uses the current hour
	AQIMode    domain.AQIMode
	Greeting   string

	RunMode         string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	WeatherBaseURL    string
	AirQualityBaseURL string
	HTTPTimeout       time.Duration

	NotifyBackend string
	NotifyTopic   string
	DryRun        bool
	NtfyBaseURL   string
	NtfyToken     string
	KafkaBrokers  []string
	MQTTBroker    string
	MQTTPort      int
	MQTTClientID  string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := parsePositiveDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	loc, err := parseLocation()
	if err != nil {
		return nil, err
	}

	targetHour, err := parseTargetHour()
	if err != nil {
		return nil, err
	}

	aqiMode, err := domain.ParseAQIMode(os.Getenv("AQI_MODE"))
	if err != nil {
		return nil, fmt.Errorf("invalid AQI_MODE: %w", err)
	}

	mqttPort, err := strconv.Atoi(sharedcfg.EnvOrDefault("MQTT_PORT", "1883"))
	if err != nil || mqttPort <= 0 || mqttPort > 65535 {
		return nil, errors.New("invalid MQTT_PORT")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		Location:   loc,
		TargetHour: targetHour,
		AQIMode:    aqiMode,
		Greeting:   os.Getenv("MESSAGE_GREETING"),

		RunMode:         strings.ToLower(sharedcfg.EnvOrDefault("RUN_MODE", RunModeOnce)),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherBaseURL:    sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com"),
		AirQualityBaseURL: sharedcfg.EnvOrDefault("AIR_QUALITY_BASE_URL", "https://air-quality-api.open-meteo.com"),
		HTTPTimeout:       httpTimeout,

		NotifyBackend: strings.ToLower(sharedcfg.EnvOrDefault("NOTIFY_BACKEND", BackendNtfy)),
		NotifyTopic:   strings.TrimSpace(os.Getenv("NOTIFY_TOPIC")),
		DryRun:        os.Getenv("DRY_RUN") == "true",
		NtfyBaseURL:   sharedcfg.EnvOrDefault("NTFY_BASE_URL", "https://ntfy.sh"),
		NtfyToken:     os.Getenv("NTFY_TOKEN"),
		KafkaBrokers:  sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		MQTTBroker:    sharedcfg.EnvOrDefault("MQTT_BROKER", "localhost"),
		MQTTPort:      mqttPort,
		MQTTClientID:  sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "run-advisory"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if cfg.NotifyTopic == "" {
		return nil, errors.New("NOTIFY_TOPIC is required")
	}
	switch cfg.NotifyBackend {
	case BackendNtfy, BackendKafka, BackendMQTT:
	default:
		return nil, fmt.Errorf("invalid NOTIFY_BACKEND %q (allowed: ntfy, kafka, mqtt)", cfg.NotifyBackend)
	}
	switch cfg.RunMode {
	case RunModeOnce, RunModeServe:
	default:
		return nil, fmt.Errorf("invalid RUN_MODE %q (allowed: once, serve)", cfg.RunMode)
	}
	if cfg.NotifyBackend == BackendKafka && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if !cfg.Location.HasCoords() && !cfg.MapboxEnabled {
		return nil, errors.New("LOCATION_LAT and LOCATION_LON are required unless Mapbox geocoding is enabled")
	}
	if !cfg.Location.HasCoords() && cfg.Location.Name == "" {
		return nil, errors.New("LOCATION_NAME is required to geocode a location without coordinates")
	}

	return cfg, nil
}

func parseLocation() (domain.Location, error) {
	tz, err := time.LoadLocation(sharedcfg.EnvOrDefault("TIME_ZONE", "Asia/Seoul"))
	if err != nil {
		return domain.Location{}, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}
	loc := domain.Location{
		Name:     os.Getenv("LOCATION_NAME"),
		TimeZone: tz,
	}

	latStr, lonStr := os.Getenv("LOCATION_LAT"), os.Getenv("LOCATION_LON")
	if (latStr == "") != (lonStr == "") {
		return domain.Location{}, errors.New("LOCATION_LAT and LOCATION_LON must be set together")
	}
	if latStr == "" {
		return loc, nil
	}
	if loc.Lat, err = strconv.ParseFloat(latStr, 64); err != nil || loc.Lat < -90 || loc.Lat > 90 {
		return domain.Location{}, errors.New("invalid LOCATION_LAT")
	}
	if loc.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil || loc.Lon < -180 || loc.Lon > 180 {
		return domain.Location{}, errors.New("invalid LOCATION_LON")
	}
	return loc, nil
}

func parseTargetHour() (int, error) {
	s := os.Getenv("TARGET_HOUR")
	if s == "" {
		return -1, nil
	}
	h, err := strconv.Atoi(s)
	if err != nil || h < 0 || h > 23 {
		return 0, errors.New("invalid TARGET_HOUR (0-23)")
	}
	return h, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
