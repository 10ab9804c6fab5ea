package weather

import (
	"time"

	"github.com/google/uuid"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/forecast"
)

// AggregateForecast runs the forecast engine over one provider response and
// assembles the dashboard. now must be a UTC instant; it decides which slots
// still count as "today".
func AggregateForecast(fc Forecast, ranker forecast.Ranker, now time.Time) (Dashboard, error) {
	views, err := forecast.Build(fc.Samples, fc.TimezoneOffset, now.Unix(), ranker)
	if err != nil {
		return Dashboard{}, err
	}

	city := fc.City
	if city == "" {
		city = fc.Location.City
	}

	return Dashboard{
		ID:             uuid.New(),
		Location:       fc.Location,
		City:           city,
		Provider:       fc.Provider,
		TimezoneOffset: fc.TimezoneOffset,
		GeneratedAt:    now.UTC(),
		Current:        fc.Current,
		Today:          views.Today,
		Days:           views.Days,
	}, nil
}
