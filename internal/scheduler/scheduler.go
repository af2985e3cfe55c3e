package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-now/internal/weather"
)

const jobTimeout = 30 * time.Second

// Refresher is the part of weather.Service the scheduler drives.
type Refresher interface {
	LookupDefault(ctx context.Context) (weather.Record, error)
}

// Scheduler periodically refetches the current conditions for the default location.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	log       *slog.Logger
}

// New creates a new Scheduler.
func New(interval time.Duration, refresher Refresher, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
		log:       log.With("component", "scheduler"),
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
// A non-positive interval disables it.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("refresh disabled")
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Info("refresh scheduled", "interval", s.interval)
	return nil
}

// RunOnce refetches the default location and logs the outcome.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	rec, err := s.refresher.LookupDefault(ctx)
	if err != nil {
		s.log.Warn("refresh failed", "err", err)
		return
	}
	s.log.Info("refreshed conditions",
		"address", rec.Address,
		"temp", rec.Temp,
		"description", rec.WeatherDescription,
		"updated", rec.UpdatedAtText,
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
