package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "owm-test-key"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.WeatherAPIKey)
	assert.True(t, cfg.WeatherKeyMissing())
	assert.Equal(t, DefaultWeatherURL, cfg.WeatherBaseURL)
	assert.Equal(t, time.Duration(0), cfg.WeatherTimeout)
	assert.Equal(t, "metric", cfg.WeatherUnits)
	assert.Equal(t, "de", cfg.WeatherLang)
	assert.Equal(t, 52.5170365, cfg.DefaultLat)
	assert.Equal(t, 13.3888599, cfg.DefaultLon)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "app-state-changes", cfg.KafkaStateTopic)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("OWM_API_KEY", testAPIKey)
	t.Setenv("OWM_BASE_URL", "http://localhost:1234/weather")
	t.Setenv("WEATHER_TIMEOUT", "3s")
	t.Setenv("WEATHER_UNITS", "imperial")
	t.Setenv("WEATHER_LANG", "en")
	t.Setenv("DEFAULT_LAT", "48.1374")
	t.Setenv("DEFAULT_LON", "11.5755")
	t.Setenv("REFRESH_INTERVAL", "10m")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_STATE_TOPIC", "custom-state")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, testAPIKey, cfg.WeatherAPIKey)
	assert.False(t, cfg.WeatherKeyMissing())
	assert.Equal(t, "http://localhost:1234/weather", cfg.WeatherBaseURL)
	assert.Equal(t, 3*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, "imperial", cfg.WeatherUnits)
	assert.Equal(t, "en", cfg.WeatherLang)
	assert.Equal(t, 48.1374, cfg.DefaultLat)
	assert.Equal(t, 11.5755, cfg.DefaultLon)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-state", cfg.KafkaStateTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidWeatherTimeout(t *testing.T) {
	t.Setenv("WEATHER_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_TIMEOUT")
}

func TestLoad_NegativeRefreshInterval(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_INTERVAL")
}

func TestLoad_InvalidDefaultLat(t *testing.T) {
	t.Setenv("DEFAULT_LAT", "north")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_LAT")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
