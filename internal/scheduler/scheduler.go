package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/fairchild/envmonitor/internal/monitor"
)

// Scheduler runs each source's bulk fetch job on its own cadence. Jobs are
// fire-and-forget: a slow upstream delays its own source only.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *monitor.Service
	intervals map[string]time.Duration // keyed by refresh token
}

// New creates a Scheduler. intervals maps refresh tokens to polling cadences;
// adapters without an entry are not scheduled.
func New(service *monitor.Service, intervals map[string]time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		intervals: intervals,
	}
}

// Start registers one periodic job per configured source and starts the
// underlying scheduler. Every job also fires once immediately so the store is
// populated right after boot.
func (s *Scheduler) Start() error {
	registered := 0
	for token, adapter := range s.service.Adapters() {
		interval, ok := s.intervals[token]
		if !ok || interval <= 0 {
			slog.Warn("source has no polling interval; skipping", "source", adapter.Name())
			continue
		}

		adapter := adapter
		_, err := s.scheduler.Every(interval).StartImmediately().Do(func() {
			s.service.RunBulkJob(context.Background(), adapter)
		})
		if err != nil {
			return fmt.Errorf("schedule %s: %w", adapter.Name(), err)
		}

		slog.Info("scheduled source", "source", adapter.Name(), "interval", interval)
		registered++
	}

	if registered == 0 {
		slog.Warn("no sources scheduled")
		return nil
	}

	s.scheduler.StartAsync()
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
