package weather_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/forecast"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/store"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

// 2024-06-01T00:00:00Z
const baseUTC int64 = 1717200000

type fakeProvider struct {
	name   string
	offset int64
	err    error
	calls  int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchForecast(_ context.Context, loc weather.Location) (weather.Forecast, error) {
	p.calls++
	if p.err != nil {
		return weather.Forecast{}, p.err
	}
	samples := make([]forecast.Sample, 16)
	for i := range samples {
		desc, icon := "clear sky", "01d"
		if i%4 == 2 {
			desc, icon = "light rain", "10d"
		}
		samples[i] = forecast.Sample{
			TimestampUTC: baseUTC + int64(i)*10800,
			Temperature:  float64(10 + i),
			Description:  desc,
			IconCode:     icon,
		}
	}
	return weather.Forecast{
		Location:       loc,
		TimezoneOffset: p.offset,
		Samples:        samples,
	}, nil
}

var priority = []string{"light rain", "clear sky"}

func fixedClock(ts int64) weather.Option {
	return weather.WithClock(func() time.Time { return time.Unix(ts, 0) })
}

func TestBuildDashboardUsesInjectedClock(t *testing.T) {
	p := &fakeProvider{name: "primary", offset: 0}
	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Provider{p}, priority,
		zaptest.NewLogger(t), fixedClock(baseUTC+18*3600))

	d, err := svc.BuildDashboard(context.Background(), weather.Location{City: "London", Country: "GB"})
	require.NoError(t, err)

	assert.Equal(t, "primary", d.Provider, "provider name filled from the provider")
	assert.Equal(t, "London", d.City, "city falls back to the searched location")
	assert.Equal(t, time.Unix(baseUTC+18*3600, 0).UTC(), d.GeneratedAt)
	assert.Equal(t, time.UTC, d.GeneratedAt.Location())
	assert.NotEqual(t, [16]byte{}, [16]byte(d.ID))

	// 18:00 and 21:00 remain on 2024-06-01.
	require.Len(t, d.Today, 2)
	assert.Equal(t, "2024-06-01", d.Today[0].LocalDayKey)

	require.Len(t, d.Days, 2)
	assert.Equal(t, "light rain", d.Days[0].RepresentativeDescription)
	assert.Equal(t, "10d", d.Days[0].RepresentativeIconCode)
	assert.Equal(t, 10.0, d.Days[0].MinTemperature)
	assert.Equal(t, 17.0, d.Days[0].MaxTemperature)
}

func TestBuildDashboardFallsBackToNextProvider(t *testing.T) {
	failing := &fakeProvider{name: "primary", err: errors.New("rate limited")}
	backup := &fakeProvider{name: "backup", offset: 3600}
	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Provider{failing, backup}, priority,
		zaptest.NewLogger(t), fixedClock(baseUTC))

	d, err := svc.BuildDashboard(context.Background(), weather.Location{City: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, "backup", d.Provider)
	assert.Equal(t, int64(3600), d.TimezoneOffset)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, backup.calls)
}

func TestBuildDashboardAllProvidersFail(t *testing.T) {
	cause := errors.New("connection refused")
	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Provider{
		&fakeProvider{name: "a", err: cause},
		&fakeProvider{name: "b", err: errors.New("timeout")},
	}, priority, zaptest.NewLogger(t))

	_, err := svc.BuildDashboard(context.Background(), weather.Location{City: "Paris"})
	assert.ErrorIs(t, err, weather.ErrAllProvidersFailed)
	assert.ErrorIs(t, err, cause)
}

func TestBuildDashboardNoProviders(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(0, 0), nil, priority, nil)

	_, err := svc.BuildDashboard(context.Background(), weather.Location{City: "Paris"})
	assert.ErrorIs(t, err, weather.ErrNoProviders)
}

func TestBuildDashboardRejectsInvalidOffset(t *testing.T) {
	p := &fakeProvider{name: "broken", offset: 20 * 3600}
	svc := weather.NewService(store.NewMemoryStore(0, 0), []weather.Provider{p}, priority,
		zaptest.NewLogger(t), fixedClock(baseUTC))

	_, err := svc.BuildDashboard(context.Background(), weather.Location{City: "Paris"})
	var verr *forecast.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, forecast.ErrInvalidOffset)
}

func TestRefreshAndStoreKeepsLastGoodDashboard(t *testing.T) {
	p := &fakeProvider{name: "primary"}
	mem := store.NewMemoryStore(0, 0)
	svc := weather.NewService(mem, []weather.Provider{p}, priority, zaptest.NewLogger(t), fixedClock(baseUTC))
	loc := weather.Location{City: "Paris", Country: "FR"}

	_, err := svc.GetLatest(loc)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.RefreshAndStore(context.Background(), loc))
	first, err := svc.GetLatest(loc)
	require.NoError(t, err)

	p.err = errors.New("down")
	assert.Error(t, svc.RefreshAndStore(context.Background(), loc))

	latest, err := svc.GetLatest(loc)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)

	history, err := svc.GetRange(loc, time.Unix(baseUTC, 0), time.Unix(baseUTC, 0))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAggregateAndPriority(t *testing.T) {
	svc := weather.NewService(store.NewMemoryStore(0, 0), nil, priority, nil)

	got := svc.Priority()
	assert.Equal(t, priority, got)
	got[0] = "mutated"
	assert.Equal(t, "light rain", svc.Priority()[0])

	views, err := svc.Aggregate([]forecast.Sample{
		{TimestampUTC: baseUTC, Temperature: 5, Description: "clear sky"},
		{TimestampUTC: baseUTC + 10800, Temperature: 7, Description: "light rain"},
	}, 0, baseUTC)
	require.NoError(t, err)
	assert.Len(t, views.Today, 2)
	require.Len(t, views.Days, 1)
	assert.Equal(t, "light rain", views.Days[0].RepresentativeDescription)

	_, err = svc.Aggregate(nil, 0, -62135596801)
	assert.ErrorIs(t, err, forecast.ErrInvalidTimestamp)
}

func TestLocationKey(t *testing.T) {
	lat, lon := 40.71278, -74.00597
	assert.Equal(t, "Paris:FR", weather.Location{City: "Paris", Country: "FR"}.Key())
	assert.Equal(t, "@40.7128,-74.0060", weather.Location{Lat: &lat, Lon: &lon}.Key())
	assert.Equal(t, "New York:", weather.Location{City: "New York", Lat: &lat, Lon: &lon}.Key())
}
