// Package forecast turns a UTC forecast series and a fixed city offset into
// city-local views: the remaining slots of today and one summary per day.
// Every function is pure; the host timezone is never consulted.
package forecast

import "time"

// DayKeyLayout is the layout of a local calendar-day key.
const DayKeyLayout = "2006-01-02"

// Sample is a single fixed-interval forecast point as reported by a provider.
// TimestampUTC is seconds since the Unix epoch.
type Sample struct {
	TimestampUTC int64   `json:"dt"`
	Temperature  float64 `json:"temperature"`
	Description  string  `json:"description"`
	IconCode     string  `json:"icon"`
	Humidity     float64 `json:"humidity"`
	WindSpeed    float64 `json:"windSpeed"`
}

// LocalizedSample is a Sample annotated with the city-local clock.
type LocalizedSample struct {
	Sample
	LocalDayKey  string `json:"localDayKey"`
	LocalInstant int64  `json:"localInstant"`
}

// LocalTime returns the local instant as wall-clock fields in a UTC time.Time.
func (s LocalizedSample) LocalTime() time.Time {
	return time.Unix(s.LocalInstant, 0).UTC()
}

// DailySummary is the one-row view of a single local calendar day.
type DailySummary struct {
	DayKey                    string            `json:"dayKey"`
	MinTemperature            float64           `json:"minTemperature"`
	MaxTemperature            float64           `json:"maxTemperature"`
	RepresentativeDescription string            `json:"description"`
	RepresentativeIconCode    string            `json:"icon"`
	Samples                   []LocalizedSample `json:"samples"`
}

// Views bundles the two city-local views built from one series.
type Views struct {
	Today []LocalizedSample `json:"today"`
	Days  []DailySummary    `json:"days"`
}
