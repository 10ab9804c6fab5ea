package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "OPENWEATHER_UNITS", "GEOCODER_API_KEY", "WEATHER_PROVIDERS",
		"HTTP_TIMEOUT", "FETCH_INTERVAL", "WEATHER_LOCATION_CITY", "WEATHER_LOCATION_COUNTRY",
		"STORE_MAX_HISTORY", "STORE_MAX_AGE", "PORT", "LOG_LEVEL", "DESCRIPTION_PRIORITY_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "metric", cfg.OpenWeatherUnits)
	assert.Equal(t, []string{ProviderOpenWeather, ProviderOpenMeteo}, cfg.Providers)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 96, cfg.StoreMaxHistory)
	assert.Equal(t, 24*time.Hour, cfg.StoreMaxAge)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Locations, "no watch-list without WEATHER_LOCATION_CITY")
	require.NotEmpty(t, cfg.DescriptionPriority)
	assert.Equal(t, "tornado", cfg.DescriptionPriority[0])
	assert.Equal(t, "clear sky", cfg.DescriptionPriority[len(cfg.DescriptionPriority)-1])
}

func TestLoadLocations(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_LOCATION_CITY", "Paris, Tokyo")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "FR,JP")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []weather.Location{
		{City: "Paris", Country: "FR"},
		{City: "Tokyo", Country: "JP"},
	}, cfg.Locations)
}

func TestLoadLocationsWithoutCountries(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_LOCATION_CITY", "Paris")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []weather.Location{{City: "Paris"}}, cfg.Locations)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad interval", map[string]string{"FETCH_INTERVAL": "soon"}},
		{"zero interval", map[string]string{"FETCH_INTERVAL": "0s"}},
		{"bad timeout", map[string]string{"HTTP_TIMEOUT": "10"}},
		{"bad max age", map[string]string{"STORE_MAX_AGE": "a day"}},
		{"bad max history", map[string]string{"STORE_MAX_HISTORY": "many"}},
		{"unknown provider", map[string]string{"WEATHER_PROVIDERS": "openweather,weatherstack"}},
		{"no providers", map[string]string{"WEATHER_PROVIDERS": " , "}},
		{"mismatched locations", map[string]string{
			"WEATHER_LOCATION_CITY":    "Paris,Tokyo",
			"WEATHER_LOCATION_COUNTRY": "FR",
		}},
		{"empty city entry", map[string]string{"WEATHER_LOCATION_CITY": "Paris,,Tokyo"}},
		{"missing priority file", map[string]string{"DESCRIPTION_PRIORITY_FILE": "/nonexistent/priority.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadPriorityFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "priority.yaml")
	require.NoError(t, os.WriteFile(path, []byte("priority:\n  - Rain\n  - Clouds\n  - Clear\n"), 0o600))
	t.Setenv("DESCRIPTION_PRIORITY_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Rain", "Clouds", "Clear"}, cfg.DescriptionPriority)
}

func TestParsePriority(t *testing.T) {
	_, err := ParsePriority([]byte("priority: []\n"))
	assert.Error(t, err)

	_, err = ParsePriority([]byte("priority: [unclosed\n"))
	assert.Error(t, err)

	got, err := ParsePriority(defaultPriority)
	require.NoError(t, err)
	assert.Contains(t, got, "light rain")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("chatty")
	assert.Error(t, err)
}
