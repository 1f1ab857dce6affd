package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/swelljoe/clima/internal/weather"
)

type AppConfig struct {
	Port string

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherGeoURL  string
	HTTPTimeout        time.Duration

	// SearchDebounce is the quiet period before a typeahead search is issued
	SearchDebounce time.Duration

	// DefaultLocation is rendered when a page is requested without a coordinate
	DefaultLocation weather.Coordinate

	// DBPath points at the optional sqlite gazetteer; empty disables it
	DBPath string

	IconBase  string
	StaticDir string

	// SessionIdle is how long an unused browser session is kept
	SessionIdle time.Duration

	LogLevel zerolog.Level
}

// Load reads configuration from .env and the environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:               getenvDefault("PORT", "8080"),
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: getenvDefault("OPENWEATHER_BASE_URL", weather.DefaultBaseURL),
		OpenWeatherGeoURL:  getenvDefault("OPENWEATHER_GEO_URL", weather.DefaultGeoBaseURL),
		DBPath:             os.Getenv("DB_PATH"),
		IconBase:           getenvDefault("ICON_BASE", "/static/img/weather_icons/"),
		StaticDir:          getenvDefault("STATIC_DIR", "static"),
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is required")
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = getenvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.SessionIdle, err = getenvDuration("SESSION_IDLE", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionIdle <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE must be positive")
	}

	if cfg.DefaultLocation.Lat, err = getenvFloat("DEFAULT_LAT", 51.5073219); err != nil {
		return nil, err
	}
	if cfg.DefaultLocation.Lon, err = getenvFloat("DEFAULT_LON", -0.1276474); err != nil {
		return nil, err
	}
	if cfg.DefaultLocation.Lat < -90 || cfg.DefaultLocation.Lat > 90 {
		return nil, fmt.Errorf("DEFAULT_LAT out of range: %f", cfg.DefaultLocation.Lat)
	}
	if cfg.DefaultLocation.Lon < -180 || cfg.DefaultLocation.Lon > 180 {
		return nil, fmt.Errorf("DEFAULT_LON out of range: %f", cfg.DefaultLocation.Lon)
	}

	cfg.LogLevel, err = zerolog.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// URLBuilder returns the OpenWeatherMap URL builder for this configuration
func (c *AppConfig) URLBuilder() weather.URLBuilder {
	b := weather.NewURLBuilder(c.OpenWeatherAPIKey)
	b.BaseURL = c.OpenWeatherBaseURL
	b.GeoBaseURL = c.OpenWeatherGeoURL
	return b
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
