package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairchild/envmonitor/internal/store"
)

// AppConfig is the full runtime configuration, loaded from environment
// variables with sensible defaults. Provider base URLs are overridable so
// tests and air-gapped deployments can point at stand-ins.
type AppConfig struct {
	AppEnv   string
	LogLevel string
	Port     string

	AirNowAPIKey string

	// Provider base URLs; empty means the public endpoint.
	WeatherBaseURL    string
	MeteoBaseURL      string
	MarineBaseURL     string
	AirQualityBaseURL string
	FireBaseURL       string

	// Polling cadence per refresh token.
	Intervals map[string]time.Duration

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// StoreBackend selects "memory" or "postgres".
	StoreBackend string
	Postgres     store.PostgresConfig

	// StoreMaxHistory caps readings kept per type by the memory store
	// (0 = unlimited).
	StoreMaxHistory int

	// DashboardCacheTTL bounds snapshot staleness (0 disables caching).
	DashboardCacheTTL time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		AppEnv:   getenvDefault("APP_ENV", "development"),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),
		Port:     getenvDefault("PORT", "8080"),

		AirNowAPIKey: os.Getenv("AIRNOW_API_KEY"),

		WeatherBaseURL:    os.Getenv("WEATHER_BASE_URL"),
		MeteoBaseURL:      os.Getenv("METEO_BASE_URL"),
		MarineBaseURL:     os.Getenv("MARINE_BASE_URL"),
		AirQualityBaseURL: os.Getenv("AIRQUALITY_BASE_URL"),
		FireBaseURL:       os.Getenv("FIRE_BASE_URL"),

		StoreBackend:    getenvDefault("STORE_BACKEND", "memory"),
		StoreMaxHistory: getenvInt("STORE_MAX_HISTORY", 1000),
	}

	intervals := map[string]time.Duration{}
	for token, def := range map[string]string{
		"weather":    "5m",
		"meteo":      "5m",
		"marine":     "10m",
		"airquality": "15m",
		"fire":       "60m",
	} {
		d, err := parseDurationEnv("FETCH_INTERVAL_"+strings.ToUpper(token), def)
		if err != nil {
			return nil, err
		}
		intervals[token] = d
	}
	cfg.Intervals = intervals

	var err error
	if cfg.HTTPTimeout, err = parseDurationEnv("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.DashboardCacheTTL, err = parseDurationEnv("DASHBOARD_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}

	if cfg.StoreBackend != "memory" && cfg.StoreBackend != "postgres" {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be memory or postgres", cfg.StoreBackend)
	}

	cfg.Postgres = store.PostgresConfig{
		Host:            getenvDefault("DB_HOST", "localhost"),
		Port:            getenvInt("DB_PORT", 5432),
		User:            getenvDefault("DB_USER", "envmonitor"),
		Password:        os.Getenv("DB_PASSWORD"),
		Database:        getenvDefault("DB_NAME", "envmonitor"),
		SSLMode:         getenvDefault("DB_SSLMODE", "disable"),
		MaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: 30 * time.Minute,
	}

	return cfg, nil
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
