package weather

import (
	"context"
	"time"
)

// Provider abstracts a forecast data source (e.g. OpenWeatherMap, Open-Meteo).
// A successful FetchForecast always carries the offset the provider reported
// for the location.
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, loc Location) (Forecast, error)
}

// Store is the contract the in-memory dashboard history must satisfy.
type Store interface {
	SaveDashboard(loc Location, dashboard Dashboard)
	GetLatest(loc Location) (Dashboard, error)
	GetRange(loc Location, from, to time.Time) ([]Dashboard, error)
}
