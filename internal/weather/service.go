package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/forecast"
)

var (
	// ErrNoProviders is returned when the service has nothing to fetch from.
	ErrNoProviders = errors.New("no weather providers configured")

	// ErrAllProvidersFailed is returned when every provider failed for a location.
	ErrAllProvidersFailed = errors.New("all weather providers failed")
)

// Service orchestrates providers, the forecast engine and the dashboard store.
type Service struct {
	store     Store
	providers []Provider
	priority  forecast.PriorityList
	logger    *zap.Logger
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock used to decide what "now" is.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service. Providers are tried in order.
func NewService(store Store, providers []Provider, priority []string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		providers: providers,
		priority:  forecast.PriorityList(append([]string(nil), priority...)),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Priority returns a copy of the configured description priority list.
func (s *Service) Priority() []string {
	return append([]string(nil), s.priority...)
}

// BuildDashboard fetches a fresh forecast for loc and aggregates it. The first
// provider that succeeds wins; failures are logged and joined.
func (s *Service) BuildDashboard(ctx context.Context, loc Location) (Dashboard, error) {
	if len(s.providers) == 0 {
		return Dashboard{}, ErrNoProviders
	}

	fc, err := s.fetch(ctx, loc)
	if err != nil {
		return Dashboard{}, err
	}

	dashboard, err := AggregateForecast(fc, s.priority, s.now().UTC())
	if err != nil {
		return Dashboard{}, fmt.Errorf("aggregate %s forecast for %s: %w", fc.Provider, loc.Key(), err)
	}

	s.logger.Debug("dashboard built",
		zap.String("location", loc.Key()),
		zap.String("provider", fc.Provider),
		zap.Int64("offset", fc.TimezoneOffset),
		zap.Int("samples", len(fc.Samples)),
		zap.Int("today", len(dashboard.Today)),
		zap.Int("days", len(dashboard.Days)))

	return dashboard, nil
}

func (s *Service) fetch(ctx context.Context, loc Location) (Forecast, error) {
	var errs []error
	for _, p := range s.providers {
		if err := ctx.Err(); err != nil {
			return Forecast{}, err
		}

		fc, err := p.FetchForecast(ctx, loc)
		if err != nil {
			s.logger.Warn("provider forecast failed",
				zap.String("provider", p.Name()),
				zap.String("location", loc.Key()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if fc.Provider == "" {
			fc.Provider = p.Name()
		}
		return fc, nil
	}
	return Forecast{}, fmt.Errorf("%w for %s: %w", ErrAllProvidersFailed, loc.Key(), errors.Join(errs...))
}

// RefreshAndStore builds a dashboard for loc and stores it. On failure the last
// good dashboard is kept.
func (s *Service) RefreshAndStore(ctx context.Context, loc Location) error {
	dashboard, err := s.BuildDashboard(ctx, loc)
	if err != nil {
		s.logger.Warn("refresh failed; keeping last good dashboard",
			zap.String("location", loc.Key()),
			zap.Error(err))
		return err
	}
	s.store.SaveDashboard(loc, dashboard)
	return nil
}

// Aggregate runs the engine over caller-supplied samples with the configured priority list.
func (s *Service) Aggregate(samples []forecast.Sample, offsetSeconds, nowUTC int64) (forecast.Views, error) {
	return forecast.Build(samples, offsetSeconds, nowUTC, s.priority)
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (Dashboard, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]Dashboard, error) {
	return s.store.GetRange(loc, from, to)
}
