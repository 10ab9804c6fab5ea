package store

import (
	"errors"
	"sync"
	"time"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

var (
	// ErrNotFound is returned when no dashboard is available for a given location.
	ErrNotFound = errors.New("no dashboard for location")
)

// MemoryStore is a concurrency-safe in-memory history of dashboards, keyed by
// location and ordered by GeneratedAt as saved.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: dashboards oldest first
	data map[string][]weather.Dashboard

	maxHistory int           // max dashboards per location (<= 0 = unlimited)
	maxAge     time.Duration // max age measured on GeneratedAt (<= 0 = unlimited)
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]weather.Dashboard),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveDashboard appends a dashboard for a location and enforces retention.
func (s *MemoryStore) SaveDashboard(loc weather.Location, dashboard weather.Dashboard) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[key], dashboard)

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for i < len(history) && history[i].GeneratedAt.Before(cutoff) {
			i++
		}
		// Never drop the dashboard that was just saved.
		if i == len(history) {
			i = len(history) - 1
		}
		history = history[i:]
	}

	s.data[key] = history
}

// GetLatest returns the most recent dashboard for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[loc.Key()]
	if len(history) == 0 {
		return weather.Dashboard{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// GetRange returns all dashboards for a location generated between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[loc.Key()]
	if len(history) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Dashboard
	for _, d := range history {
		if !d.GeneratedAt.Before(from) && !d.GeneratedAt.After(to) {
			result = append(result, d)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
