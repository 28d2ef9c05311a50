package monitor

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Store is the narrow persistence contract the ingestion and dashboard sides
// depend on. Readings are append-only; fires are upserted by FireID; health
// rows are mutated in place. Recent* queries return rows newest-first.
type Store interface {
	SaveStationReading(ctx context.Context, r *StationReading) error
	SaveForecastReading(ctx context.Context, r *ForecastReading) error
	SaveMarineReading(ctx context.Context, r *MarineReading) error
	SaveAirQualityReading(ctx context.Context, r *AirQualityReading) error

	// FireByID returns ErrNotFound for an unknown fire.
	FireByID(ctx context.Context, fireID string) (*FireEntity, error)
	SaveFire(ctx context.Context, f *FireEntity) error
	FiresUpdatedSince(ctx context.Context, since time.Time) ([]FireEntity, error)

	RecentStationReadings(ctx context.Context, since time.Time) ([]StationReading, error)
	RecentForecastReadings(ctx context.Context, since time.Time) ([]ForecastReading, error)
	RecentMarineReadings(ctx context.Context, since time.Time) ([]MarineReading, error)
	RecentAirQualityReadings(ctx context.Context, since time.Time) ([]AirQualityReading, error)

	SaveWebcam(ctx context.Context, w *Webcam) error
	ActiveWebcams(ctx context.Context) ([]Webcam, error)

	// SourceHealthByName returns ErrNotFound for a source with no history yet.
	SourceHealthByName(ctx context.Context, name string) (*SourceHealth, error)
	SaveSourceHealth(ctx context.Context, h *SourceHealth) error
	AllSourceHealth(ctx context.Context) ([]SourceHealth, error)
}
