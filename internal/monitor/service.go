package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fairchild/envmonitor/internal/metrics"
)

// Service orchestrates bulk fetch jobs across all registered adapters and
// reports per-target outcomes to the health tracker.
type Service struct {
	adapters map[string]Adapter // keyed by refresh token
	health   *HealthTracker
	metrics  *metrics.Collector

	fetchTimeout time.Duration
}

// NewService registers the given adapters by their refresh token.
func NewService(adapters []Adapter, health *HealthTracker, collector *metrics.Collector) *Service {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Token()] = a
	}
	return &Service{
		adapters:     m,
		health:       health,
		metrics:      collector,
		fetchTimeout: 30 * time.Second,
	}
}

// Adapters returns the registered adapters keyed by refresh token.
func (s *Service) Adapters() map[string]Adapter {
	return s.adapters
}

// RunBulkJob walks the adapter's default targets and fetches each one in its
// own goroutine. Targets are independent: one failure never aborts the rest.
// The outcome of every target is recorded in the health tracker, success or
// failure, before the call returns.
func (s *Service) RunBulkJob(ctx context.Context, adapter Adapter) {
	targets := adapter.DefaultTargets()
	slog.Info("starting bulk fetch job", "source", adapter.Name(), "targets", len(targets))

	var wg sync.WaitGroup
	for _, target := range targets {
		target := target
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.fetchTarget(ctx, adapter, target)
		}()
	}
	wg.Wait()

	slog.Info("completed bulk fetch job", "source", adapter.Name())
}

func (s *Service) fetchTarget(ctx context.Context, adapter Adapter, target Target) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	err := adapter.Fetch(fetchCtx, target)
	s.metrics.FetchDuration.WithLabelValues(adapter.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Error("fetch failed", "source", adapter.Name(), "target", targetLabel(target), "error", err)
		s.metrics.FetchErrorsTotal.WithLabelValues(adapter.Name()).Inc()
		if herr := s.health.RecordError(ctx, adapter.Name(), err.Error()); herr != nil {
			slog.Error("record error failed", "source", adapter.Name(), "error", herr)
		}
		return
	}

	s.metrics.FetchesTotal.WithLabelValues(adapter.Name()).Inc()
	if herr := s.health.RecordSuccess(ctx, adapter.Name()); herr != nil {
		slog.Error("record success failed", "source", adapter.Name(), "error", herr)
	}
}

// Refresh starts the named source's bulk job out of band and returns without
// waiting for it. Tokens are case-insensitive; an unknown token is rejected
// before any adapter is invoked. The job's outcome is observable only through
// the health tracker.
func (s *Service) Refresh(token string) error {
	adapter, ok := s.adapters[strings.ToLower(token)]
	if !ok {
		return fmt.Errorf("unknown data source: %s", token)
	}

	go s.RunBulkJob(context.Background(), adapter)
	return nil
}

func targetLabel(t Target) string {
	if t.ID != "" {
		return t.ID
	}
	if t.Name != "" {
		return t.Name
	}
	if t.Lat != 0 || t.Lon != 0 {
		return fmt.Sprintf("%.4f,%.4f", t.Lat, t.Lon)
	}
	return "all"
}
