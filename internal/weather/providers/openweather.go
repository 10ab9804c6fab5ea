package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/forecast"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherConfig configures the OpenWeatherMap provider.
type OpenWeatherConfig struct {
	APIKey  string
	Units   string // metric, imperial or standard
	BaseURL string
}

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap's
// current-weather and 5 day / 3 hour forecast endpoints.
type OpenWeatherProvider struct {
	name    string
	cfg     OpenWeatherConfig
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates an OpenWeatherMap provider.
func NewOpenWeatherProvider(client *http.Client, cfg OpenWeatherConfig, logger *zap.Logger) *OpenWeatherProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = openWeatherBaseURL
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}

	return &OpenWeatherProvider{
		name: "openweathermap",
		cfg:  cfg,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
			Logger:  logger,
		},
		circuit: newCircuitBreaker("openweathermap", logger),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrentPayload struct {
	Dt       int64  `json:"dt"`
	Timezone *int64 `json:"timezone"`
	Name     string `json:"name"`
	Main     struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []owmCondition `json:"weather"`
}

type owmForecastPayload struct {
	List []struct {
		Dt   *int64 `json:"dt"`
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone *int64 `json:"timezone"`
	} `json:"city"`
}

// FetchForecast requests current weather and the forecast concurrently. The
// offset comes from the current-weather response.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.Forecast, error) {
	if p.cfg.APIKey == "" {
		return weather.Forecast{}, fmt.Errorf("openweather api key is not configured")
	}
	if loc.City == "" && !loc.HasCoordinates() {
		return weather.Forecast{}, fmt.Errorf("openweather requires a city or coordinates")
	}

	var (
		wg          sync.WaitGroup
		current     owmCurrentPayload
		upcoming    owmForecastPayload
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		currentErr = getJSON(ctx, p.httpCfg, p.circuit, p.requestBuilder("weather", loc), &current)
	}()
	go func() {
		defer wg.Done()
		forecastErr = getJSON(ctx, p.httpCfg, p.circuit, p.requestBuilder("forecast", loc), &upcoming)
	}()
	wg.Wait()

	if currentErr != nil {
		return weather.Forecast{}, fmt.Errorf("openweather current weather: %w", currentErr)
	}
	if forecastErr != nil {
		return weather.Forecast{}, fmt.Errorf("openweather forecast: %w", forecastErr)
	}

	offset := current.Timezone
	if offset == nil {
		offset = upcoming.City.Timezone
	}
	if offset == nil {
		return weather.Forecast{}, fmt.Errorf("openweather: %w", ErrMissingOffset)
	}

	samples := make([]forecast.Sample, 0, len(upcoming.List))
	for i, item := range upcoming.List {
		if item.Dt == nil {
			return weather.Forecast{}, fmt.Errorf("openweather: %w: list[%d] has no dt", ErrMalformedPayload, i)
		}
		cond := firstCondition(item.Weather)
		samples = append(samples, forecast.Sample{
			TimestampUTC: *item.Dt,
			Temperature:  floatOrNaN(item.Main.Temp),
			Description:  cond.Description,
			IconCode:     cond.Icon,
			Humidity:     floatOrNaN(item.Main.Humidity),
			WindSpeed:    floatOrNaN(item.Wind.Speed),
		})
	}

	cond := firstCondition(current.Weather)
	city := current.Name
	if city == "" {
		city = upcoming.City.Name
	}

	return weather.Forecast{
		Location:       loc,
		Provider:       p.name,
		City:           city,
		TimezoneOffset: *offset,
		Current: weather.Current{
			TimestampUTC: current.Dt,
			Temperature:  floatOrNaN(current.Main.Temp),
			FeelsLike:    floatOrNaN(current.Main.FeelsLike),
			Humidity:     floatOrNaN(current.Main.Humidity),
			WindSpeed:    floatOrNaN(current.Wind.Speed),
			Description:  cond.Description,
			IconCode:     cond.Icon,
		},
		Samples:   samples,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (p *OpenWeatherProvider) requestBuilder(endpoint string, loc weather.Location) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.cfg.APIKey)
		values.Set("units", p.cfg.Units)

		if loc.HasCoordinates() {
			values.Set("lat", fmt.Sprintf("%f", *loc.Lat))
			values.Set("lon", fmt.Sprintf("%f", *loc.Lon))
		} else {
			q := loc.City
			if loc.Country != "" {
				q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
			}
			values.Set("q", q)
		}

		u := fmt.Sprintf("%s/%s?%s", p.cfg.BaseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

func firstCondition(items []owmCondition) owmCondition {
	if len(items) == 0 {
		return owmCondition{}
	}
	return items[0]
}
