package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

// ErrGeocoderUnavailable is returned when coordinates are needed but no geocoder is configured.
var ErrGeocoderUnavailable = errors.New("geocoder not configured")

// Geocoder resolves a location to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, loc weather.Location) (weather.Location, error)
}

// GoogleGeocoder resolves city names through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string

	// The library keeps its key in a package variable, so lookups are serialised.
	mu     sync.Mutex
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder returns a geocoder, or nil when apiKey is empty.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey == "" {
		return nil
	}
	return &GoogleGeocoder{
		apiKey: apiKey,
		lookup: geocoder.Geocoding,
	}
}

// Resolve fills Lat/Lon for loc. Locations that already have coordinates are returned unchanged.
func (g *GoogleGeocoder) Resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if loc.HasCoordinates() {
		return loc, nil
	}
	if g == nil {
		return loc, ErrGeocoderUnavailable
	}
	if loc.City == "" {
		return loc, fmt.Errorf("geocode: city is required")
	}
	if err := ctx.Err(); err != nil {
		return loc, err
	}

	g.mu.Lock()
	geocoder.ApiKey = g.apiKey
	found, err := g.lookup(geocoder.Address{City: loc.City, Country: loc.Country})
	g.mu.Unlock()
	if err != nil {
		return loc, fmt.Errorf("geocode %s: %w", loc.Key(), err)
	}

	lat, lon := found.Latitude, found.Longitude
	loc.Lat = &lat
	loc.Lon = &lon
	return loc, nil
}
