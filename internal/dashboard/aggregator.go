// Package dashboard assembles the combined data view served to clients.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairchild/envmonitor/internal/metrics"
	"github.com/fairchild/envmonitor/internal/monitor"
)

// DefaultCacheTTL bounds how stale a served snapshot can be.
const DefaultCacheTTL = 5 * time.Minute

// assembleTimeout caps the combined store fan-out.
const assembleTimeout = 10 * time.Second

// Snapshot is the combined dashboard payload. Slices are always non-nil so
// empty sections serialize as [] rather than null.
type Snapshot struct {
	RecentWeatherData    []monitor.StationReading    `json:"recentWeatherData"`
	RecentMeteoData      []monitor.ForecastReading   `json:"recentMeteoData"`
	RecentMarineData     []monitor.MarineReading     `json:"recentMarineData"`
	RecentAirQualityData []monitor.AirQualityReading `json:"recentAirQualityData"`
	RecentFireData       []monitor.FireEntity        `json:"recentFireData"`
	ActiveWebcams        []monitor.Webcam            `json:"activeWebcams"`
	DataSourceStatuses   []monitor.SourceHealth      `json:"dataSourceStatuses"`
}

// Service assembles snapshots from the store with a short-lived cache in
// front. Assembly is all-or-nothing: if any section fails to load, the whole
// snapshot fails rather than serving a silently incomplete view.
type Service struct {
	store   monitor.Store
	cache   *snapshotCache
	metrics *metrics.Collector
}

// NewService creates the dashboard service. A non-positive cacheTTL disables
// caching.
func NewService(store monitor.Store, collector *metrics.Collector, cacheTTL time.Duration) *Service {
	return &Service{
		store:   store,
		cache:   newSnapshotCache(cacheTTL),
		metrics: collector,
	}
}

// Snapshot returns the dashboard view over the last `hours` hours, served
// from cache when a fresh enough one exists.
func (s *Service) Snapshot(ctx context.Context, hours int) (*Snapshot, error) {
	s.metrics.DashboardRequests.Inc()

	if cached, ok := s.cache.get(hours); ok {
		s.metrics.CacheHitsTotal.Inc()
		slog.Debug("dashboard snapshot served from cache", "hours", hours)
		return cached, nil
	}

	start := time.Now()
	snapshot, err := s.assemble(ctx, hours)
	if err != nil {
		return nil, err
	}
	s.metrics.DashboardDuration.Observe(time.Since(start).Seconds())

	s.cache.put(hours, snapshot)
	return snapshot, nil
}

func (s *Service) assemble(ctx context.Context, hours int) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, assembleTimeout)
	defer cancel()

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	snapshot := &Snapshot{
		RecentWeatherData:    []monitor.StationReading{},
		RecentMeteoData:      []monitor.ForecastReading{},
		RecentMarineData:     []monitor.MarineReading{},
		RecentAirQualityData: []monitor.AirQualityReading{},
		RecentFireData:       []monitor.FireEntity{},
		ActiveWebcams:        []monitor.Webcam{},
		DataSourceStatuses:   []monitor.SourceHealth{},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		readings, err := s.store.RecentStationReadings(ctx, since)
		if err != nil {
			return fmt.Errorf("load weather readings: %w", err)
		}
		if readings != nil {
			snapshot.RecentWeatherData = readings
		}
		return nil
	})
	g.Go(func() error {
		readings, err := s.store.RecentForecastReadings(ctx, since)
		if err != nil {
			return fmt.Errorf("load forecast readings: %w", err)
		}
		if readings != nil {
			snapshot.RecentMeteoData = readings
		}
		return nil
	})
	g.Go(func() error {
		readings, err := s.store.RecentMarineReadings(ctx, since)
		if err != nil {
			return fmt.Errorf("load marine readings: %w", err)
		}
		if readings != nil {
			snapshot.RecentMarineData = readings
		}
		return nil
	})
	g.Go(func() error {
		readings, err := s.store.RecentAirQualityReadings(ctx, since)
		if err != nil {
			return fmt.Errorf("load air quality readings: %w", err)
		}
		if readings != nil {
			snapshot.RecentAirQualityData = readings
		}
		return nil
	})
	g.Go(func() error {
		fires, err := s.store.FiresUpdatedSince(ctx, since)
		if err != nil {
			return fmt.Errorf("load fires: %w", err)
		}
		if fires != nil {
			snapshot.RecentFireData = fires
		}
		return nil
	})
	g.Go(func() error {
		webcams, err := s.store.ActiveWebcams(ctx)
		if err != nil {
			return fmt.Errorf("load webcams: %w", err)
		}
		if webcams != nil {
			snapshot.ActiveWebcams = webcams
		}
		return nil
	})
	g.Go(func() error {
		statuses, err := s.store.AllSourceHealth(ctx)
		if err != nil {
			return fmt.Errorf("load source statuses: %w", err)
		}
		if statuses != nil {
			snapshot.DataSourceStatuses = statuses
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
