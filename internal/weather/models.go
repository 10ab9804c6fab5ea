package weather

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/forecast"
)

// Location represents a searched place. Either City or both Lat/Lon must be set.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are known.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.City == "" && l.HasCoordinates() {
		return fmt.Sprintf("@%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return l.City + ":" + l.Country
}

// Current is the provider's current-conditions reading for a location.
type Current struct {
	TimestampUTC int64   `json:"dt"`
	Temperature  float64 `json:"temperature"`
	FeelsLike    float64 `json:"feelsLike"`
	Humidity     float64 `json:"humidity"`
	WindSpeed    float64 `json:"windSpeed"`
	Description  string  `json:"description"`
	IconCode     string  `json:"icon"`
}

// Forecast is one provider response set: the raw series plus the city offset
// reported alongside it.
type Forecast struct {
	Location       Location
	Provider       string
	City           string
	TimezoneOffset int64
	Current        Current
	Samples        []forecast.Sample
	FetchedAt      time.Time
}

// Dashboard is the aggregated, city-local view of one search.
type Dashboard struct {
	ID             uuid.UUID                  `json:"id"`
	Location       Location                   `json:"location"`
	City           string                     `json:"city"`
	Provider       string                     `json:"provider"`
	TimezoneOffset int64                      `json:"timezoneOffset"`
	GeneratedAt    time.Time                  `json:"generatedAt"` // always UTC
	Current        Current                    `json:"current"`
	Today          []forecast.LocalizedSample `json:"today"`
	Days           []forecast.DailySummary    `json:"days"`
}
