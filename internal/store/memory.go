package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fairchild/envmonitor/internal/monitor"
)

// MemoryStore is a concurrency-safe in-memory implementation of the
// monitor.Store contract, used in development mode and in tests. Readings
// are append-only with optional count-based retention; fires, webcams and
// health rows are keyed maps.
type MemoryStore struct {
	mu sync.RWMutex

	stations  []monitor.StationReading
	forecasts []monitor.ForecastReading
	marine    []monitor.MarineReading
	air       []monitor.AirQualityReading

	fires   map[string]monitor.FireEntity
	webcams []monitor.Webcam
	health  map[string]monitor.SourceHealth

	// max readings kept per type; <= 0 means unlimited
	maxHistory int
}

// NewMemoryStore creates a MemoryStore with an optional per-type reading cap.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		fires:      make(map[string]monitor.FireEntity),
		health:     make(map[string]monitor.SourceHealth),
		maxHistory: maxHistory,
	}
}

func (s *MemoryStore) SaveStationReading(_ context.Context, r *monitor.StationReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = append(s.stations, *r)
	s.stations = capReadings(s.stations, s.maxHistory)
	return nil
}

func (s *MemoryStore) SaveForecastReading(_ context.Context, r *monitor.ForecastReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts = append(s.forecasts, *r)
	s.forecasts = capReadings(s.forecasts, s.maxHistory)
	return nil
}

func (s *MemoryStore) SaveMarineReading(_ context.Context, r *monitor.MarineReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marine = append(s.marine, *r)
	s.marine = capReadings(s.marine, s.maxHistory)
	return nil
}

func (s *MemoryStore) SaveAirQualityReading(_ context.Context, r *monitor.AirQualityReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.air = append(s.air, *r)
	s.air = capReadings(s.air, s.maxHistory)
	return nil
}

func (s *MemoryStore) FireByID(_ context.Context, fireID string) (*monitor.FireEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fires[fireID]
	if !ok {
		return nil, monitor.ErrNotFound
	}
	out := f
	return &out, nil
}

func (s *MemoryStore) SaveFire(_ context.Context, f *monitor.FireEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fires[f.FireID] = *f
	return nil
}

func (s *MemoryStore) FiresUpdatedSince(_ context.Context, since time.Time) ([]monitor.FireEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []monitor.FireEntity
	for _, f := range s.fires {
		if !f.UpdatedAt.Before(since) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *MemoryStore) RecentStationReadings(_ context.Context, since time.Time) ([]monitor.StationReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []monitor.StationReading
	for _, r := range s.stations {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) RecentForecastReadings(_ context.Context, since time.Time) ([]monitor.ForecastReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []monitor.ForecastReading
	for _, r := range s.forecasts {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) RecentMarineReadings(_ context.Context, since time.Time) ([]monitor.MarineReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []monitor.MarineReading
	for _, r := range s.marine {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) RecentAirQualityReadings(_ context.Context, since time.Time) ([]monitor.AirQualityReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []monitor.AirQualityReading
	for _, r := range s.air {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) SaveWebcam(_ context.Context, w *monitor.Webcam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.webcams {
		if s.webcams[i].WebcamID == w.WebcamID {
			s.webcams[i] = *w
			return nil
		}
	}
	s.webcams = append(s.webcams, *w)
	return nil
}

func (s *MemoryStore) ActiveWebcams(_ context.Context) ([]monitor.Webcam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []monitor.Webcam
	for _, w := range s.webcams {
		if w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryStore) SourceHealthByName(_ context.Context, name string) (*monitor.SourceHealth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.health[name]
	if !ok {
		return nil, monitor.ErrNotFound
	}
	out := h
	return &out, nil
}

func (s *MemoryStore) SaveSourceHealth(_ context.Context, h *monitor.SourceHealth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health[h.SourceName] = *h
	return nil
}

func (s *MemoryStore) AllSourceHealth(_ context.Context) ([]monitor.SourceHealth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]monitor.SourceHealth, 0, len(s.health))
	for _, h := range s.health {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceName < out[j].SourceName })
	return out, nil
}

func capReadings[T any](readings []T, maxHistory int) []T {
	if maxHistory > 0 && len(readings) > maxHistory {
		over := len(readings) - maxHistory
		readings = readings[over:]
	}
	return readings
}
