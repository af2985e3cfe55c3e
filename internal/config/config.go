package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-now/internal/weather"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level

	OpenWeatherAPIKey string
	GeocoderAPIKey    string

	// Location used until a lookup succeeds and is remembered.
	DefaultLocation string
	Units           string
	// Country qualifier appended to every city query.
	Country string
	// Zone used to render observation, sunrise and sunset times.
	Timezone *time.Location

	HTTPTimeout time.Duration

	// RefreshInterval controls how often the default location is refetched (0 = never).
	RefreshInterval time.Duration

	// StorePath is the SQLite file for the last location (empty = in memory).
	StorePath string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	cfg.GeocoderAPIKey = strings.TrimSpace(os.Getenv("GEOCODER_API_KEY"))

	cfg.DefaultLocation = getenvDefault("WEATHER_DEFAULT_LOCATION", "palo alto,ca")
	cfg.Units = getenvDefault("WEATHER_UNITS", weather.UnitsMetric)
	switch cfg.Units {
	case weather.UnitsStandard, weather.UnitsMetric, weather.UnitsImperial:
	default:
		return nil, fmt.Errorf("invalid WEATHER_UNITS %q (allowed: standard, metric, imperial)", cfg.Units)
	}
	cfg.Country = getenvDefault("WEATHER_COUNTRY", "us")

	tzName := getenvDefault("WEATHER_TIMEZONE", "UTC")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_TIMEZONE: %w", err)
	}
	cfg.Timezone = tz

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}
	cfg.HTTPTimeout = timeout

	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	if interval < 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: must not be negative")
	}
	cfg.RefreshInterval = interval

	cfg.StorePath = strings.TrimSpace(os.Getenv("STORE_PATH"))
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// Defaults returns the service fallbacks derived from cfg.
func (c *AppConfig) Defaults() weather.Defaults {
	return weather.Defaults{
		Location: c.DefaultLocation,
		Units:    c.Units,
		APIKey:   c.OpenWeatherAPIKey,
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
