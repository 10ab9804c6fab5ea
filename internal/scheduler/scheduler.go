package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

const refreshTimeout = 30 * time.Second

// Refresher rebuilds and stores the dashboard for one location.
type Refresher interface {
	RefreshAndStore(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically refreshes dashboards for the watched locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	locations []weather.Location
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(locations []weather.Location, interval time.Duration, refresher Refresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		locations: locations,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.logger.Info("scheduler started",
		zap.Duration("interval", interval),
		zap.Int("locations", len(s.locations)))
	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every watched location concurrently and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	s.logger.Debug("scheduler: running refresh job")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
			defer cancel()

			if err := s.refresher.RefreshAndStore(ctx, loc); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				s.logger.Warn("scheduler: refresh failed",
					zap.String("location", loc.Key()),
					zap.Error(err))
			}
		}()
	}
	wg.Wait()

	s.logger.Info("scheduler: refresh job completed",
		zap.Int("locations", len(s.locations)),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
