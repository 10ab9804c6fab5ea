package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/forecast"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

const openMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// Open-Meteo returns hourly data; keep the same 3-hour UTC grid OpenWeatherMap uses.
const sampleInterval int64 = 3 * 60 * 60

// OpenMeteoProvider implements weather.Provider for Open-Meteo.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	geocoder Geocoder
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates an Open-Meteo provider. Open-Meteo needs
// coordinates, so locations given by name go through geo first.
func NewOpenMeteoProvider(client *http.Client, geo Geocoder, logger *zap.Logger) *OpenMeteoProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  openMeteoBaseURL,
		geocoder: geo,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
			Logger:  logger,
		},
		circuit: newCircuitBreaker("openmeteo", logger),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPayload struct {
	UTCOffsetSeconds *int64 `json:"utc_offset_seconds"`
	Current          struct {
		Time                int64    `json:"time"`
		Temperature2M       *float64 `json:"temperature_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		RelativeHumidity2M  *float64 `json:"relative_humidity_2m"`
		WindSpeed10M        *float64 `json:"wind_speed_10m"`
		WeatherCode         *int     `json:"weather_code"`
		IsDay               *int     `json:"is_day"`
	} `json:"current"`
	Hourly struct {
		Time               []int64    `json:"time"`
		Temperature2M      []*float64 `json:"temperature_2m"`
		RelativeHumidity2M []*float64 `json:"relative_humidity_2m"`
		WindSpeed10M       []*float64 `json:"wind_speed_10m"`
		WeatherCode        []*int     `json:"weather_code"`
		IsDay              []*int     `json:"is_day"`
	} `json:"hourly"`
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.Forecast, error) {
	if !loc.HasCoordinates() {
		if p.geocoder == nil {
			return weather.Forecast{}, fmt.Errorf("openmeteo requires latitude and longitude: %w", ErrGeocoderUnavailable)
		}
		resolved, err := p.geocoder.Resolve(ctx, loc)
		if err != nil {
			return weather.Forecast{}, fmt.Errorf("openmeteo: %w", err)
		}
		loc = resolved
	}

	buildRequest := func() (*http.Request, error) {
		hourly := "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code,is_day"
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", *loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", *loc.Lon))
		values.Set("hourly", hourly)
		values.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code,is_day")
		values.Set("timezone", "auto")
		values.Set("timeformat", "unixtime")
		values.Set("wind_speed_unit", "ms")
		values.Set("forecast_days", "5")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload openMeteoPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo forecast: %w", err)
	}
	if payload.UTCOffsetSeconds == nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo: %w", ErrMissingOffset)
	}

	h := payload.Hourly
	n := len(h.Time)
	if len(h.Temperature2M) != n || len(h.WeatherCode) != n {
		return weather.Forecast{}, fmt.Errorf("openmeteo: %w: hourly arrays differ in length", ErrMalformedPayload)
	}

	samples := make([]forecast.Sample, 0, n/3+1)
	for i, ts := range h.Time {
		if ts%sampleInterval != 0 {
			continue
		}
		cond := describeWMO(h.WeatherCode[i], at(h.IsDay, i))
		samples = append(samples, forecast.Sample{
			TimestampUTC: ts,
			Temperature:  floatOrNaN(h.Temperature2M[i]),
			Description:  cond.Description,
			IconCode:     cond.Icon,
			Humidity:     floatOrNaN(at(h.RelativeHumidity2M, i)),
			WindSpeed:    floatOrNaN(at(h.WindSpeed10M, i)),
		})
	}

	c := payload.Current
	cond := describeWMO(c.WeatherCode, c.IsDay)

	return weather.Forecast{
		Location:       loc,
		Provider:       p.name,
		City:           loc.City,
		TimezoneOffset: *payload.UTCOffsetSeconds,
		Current: weather.Current{
			TimestampUTC: c.Time,
			Temperature:  floatOrNaN(c.Temperature2M),
			FeelsLike:    floatOrNaN(c.ApparentTemperature),
			Humidity:     floatOrNaN(c.RelativeHumidity2M),
			WindSpeed:    floatOrNaN(c.WindSpeed10M),
			Description:  cond.Description,
			IconCode:     cond.Icon,
		},
		Samples:   samples,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func at[T any](values []*T, i int) *T {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// wmoConditions maps WMO weather codes onto OpenWeatherMap descriptions and
// icon prefixes so one priority list ranks both providers.
var wmoConditions = map[int]owmCondition{
	0:  {Description: "clear sky", Icon: "01"},
	1:  {Description: "few clouds", Icon: "02"},
	2:  {Description: "scattered clouds", Icon: "03"},
	3:  {Description: "overcast clouds", Icon: "04"},
	45: {Description: "fog", Icon: "50"},
	48: {Description: "fog", Icon: "50"},
	51: {Description: "light intensity drizzle", Icon: "09"},
	53: {Description: "drizzle", Icon: "09"},
	55: {Description: "heavy intensity drizzle", Icon: "09"},
	56: {Description: "freezing rain", Icon: "13"},
	57: {Description: "freezing rain", Icon: "13"},
	61: {Description: "light rain", Icon: "10"},
	63: {Description: "moderate rain", Icon: "10"},
	65: {Description: "heavy intensity rain", Icon: "10"},
	66: {Description: "freezing rain", Icon: "13"},
	67: {Description: "freezing rain", Icon: "13"},
	71: {Description: "light snow", Icon: "13"},
	73: {Description: "snow", Icon: "13"},
	75: {Description: "heavy snow", Icon: "13"},
	77: {Description: "snow", Icon: "13"},
	80: {Description: "light intensity shower rain", Icon: "09"},
	81: {Description: "shower rain", Icon: "09"},
	82: {Description: "heavy intensity shower rain", Icon: "09"},
	85: {Description: "light shower snow", Icon: "13"},
	86: {Description: "heavy shower snow", Icon: "13"},
	95: {Description: "thunderstorm", Icon: "11"},
	96: {Description: "thunderstorm with rain", Icon: "11"},
	99: {Description: "heavy thunderstorm", Icon: "11"},
}

func describeWMO(code *int, isDay *int) owmCondition {
	if code == nil {
		return owmCondition{}
	}
	cond, ok := wmoConditions[*code]
	if !ok {
		return owmCondition{Description: fmt.Sprintf("weather code %d", *code)}
	}
	suffix := "d"
	if isDay != nil && *isDay == 0 {
		suffix = "n"
	}
	cond.Main = strings.SplitN(cond.Description, " ", 2)[0]
	cond.Icon += suffix
	return cond
}
