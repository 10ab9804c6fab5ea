package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/common"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

//go:embed priority.yaml
var defaultPriority []byte

// Provider names accepted in WEATHER_PROVIDERS.
const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	OpenWeatherUnits  string
	GeocoderAPIKey    string

	// Providers in the order they are tried.
	Providers []string

	HTTPTimeout time.Duration

	// FetchInterval controls how often we refresh each watched location.
	FetchInterval time.Duration

	// Locations to watch.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           // max number of dashboards per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of dashboards (0 = unlimited)

	Port     string
	LogLevel string

	// DescriptionPriority orders weather descriptions for the daily headline.
	DescriptionPriority []string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file loaded", zap.Error(err))
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherUnits = getenvDefault("OPENWEATHER_UNITS", "metric")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	provs, err := loadProviders(getenvDefault("WEATHER_PROVIDERS", ProviderOpenWeather+","+ProviderOpenMeteo))
	if err != nil {
		return nil, err
	}
	cfg.Providers = provs

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.FetchInterval <= 0 {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: must be positive")
	}

	// Roughly 24h at 15-minute intervals.
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", 96); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	locs, err := loadLocations(os.Getenv("WEATHER_LOCATION_CITY"), os.Getenv("WEATHER_LOCATION_COUNTRY"))
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	priority := defaultPriority
	if path := os.Getenv("DESCRIPTION_PRIORITY_FILE"); path != "" {
		if priority, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read DESCRIPTION_PRIORITY_FILE: %w", err)
		}
	}
	if cfg.DescriptionPriority, err = ParsePriority(priority); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParsePriority decodes a YAML document with a top-level "priority" list.
func ParsePriority(data []byte) ([]string, error) {
	var doc struct {
		Priority []string `yaml:"priority"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse description priority: %w", err)
	}
	if len(doc.Priority) == 0 {
		return nil, errors.New("description priority list is empty")
	}
	return doc.Priority, nil
}

// NewLogger builds a production zap logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func loadProviders(raw string) ([]string, error) {
	var provs []string
	for _, name := range common.SplitList(strings.ToLower(raw)) {
		switch name {
		case ProviderOpenWeather, ProviderOpenMeteo:
			provs = append(provs, name)
		case "":
		default:
			return nil, fmt.Errorf("unknown provider %q in WEATHER_PROVIDERS", name)
		}
	}
	if len(provs) == 0 {
		return nil, errors.New("WEATHER_PROVIDERS must name at least one provider")
	}
	return provs, nil
}

func loadLocations(city, country string) ([]weather.Location, error) {
	cities := common.SplitList(city)
	if len(cities) == 0 {
		return nil, nil
	}
	countries := common.SplitList(country)
	if len(countries) != 0 && len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	locs := make([]weather.Location, 0, len(cities))
	for i, c := range cities {
		if c == "" {
			return nil, fmt.Errorf("WEATHER_LOCATION_CITY entry %d is empty", i)
		}
		loc := weather.Location{City: c}
		if len(countries) != 0 {
			loc.Country = countries[i]
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
