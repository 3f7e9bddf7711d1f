package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/joho/godotenv"
)

// DefaultWeatherURL is the OpenWeatherMap current-weather endpoint.
const DefaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather provider configuration.
	WeatherAPIKey  string
	WeatherBaseURL string
	WeatherTimeout time.Duration // 0 leaves the transport default in place
	WeatherUnits   string
	WeatherLang    string

	// Initial state.
	DefaultLat      float64
	DefaultLon      float64
	RefreshInterval time.Duration // 0 disables periodic refresh

	// State change publishing.
	KafkaBrokers    []string
	KafkaStateTopic string
	KafkaEnabled    bool
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parseNonNegativeDuration("WEATHER_TIMEOUT", "0s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseNonNegativeDuration("REFRESH_INTERVAL", "0s")
	if err != nil {
		return nil, err
	}

	defaultLat, err := parseFloat("DEFAULT_LAT", domain.DefaultLat)
	if err != nil {
		return nil, err
	}
	defaultLon, err := parseFloat("DEFAULT_LON", domain.DefaultLon)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherAPIKey:  os.Getenv("OWM_API_KEY"),
		WeatherBaseURL: sharedcfg.EnvOrDefault("OWM_BASE_URL", DefaultWeatherURL),
		WeatherTimeout: weatherTimeout,
		WeatherUnits:   sharedcfg.EnvOrDefault("WEATHER_UNITS", domain.DefaultUnits),
		WeatherLang:    sharedcfg.EnvOrDefault("WEATHER_LANG", domain.DefaultLang),

		DefaultLat:      defaultLat,
		DefaultLon:      defaultLon,
		RefreshInterval: refreshInterval,

		KafkaBrokers:    brokers,
		KafkaStateTopic: sharedcfg.EnvOrDefault("KAFKA_STATE_TOPIC", "app-state-changes"),
		KafkaEnabled:    kafkaEnabled,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaStateTopic == "" {
		return nil, errors.New("KAFKA_STATE_TOPIC is required when publishing is enabled")
	}

	return cfg, nil
}

// WeatherKeyMissing reports whether no provider API key was configured.
// Requests are still attempted and are expected to fail at the provider.
func (c *Config) WeatherKeyMissing() bool {
	return c.WeatherAPIKey == ""
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return f, nil
}
