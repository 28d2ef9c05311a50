package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/fairchild/envmonitor/internal/monitor"
)

// PostgresConfig holds connection settings for the Postgres-backed store.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStore implements monitor.Store on top of sqlx/lib/pq.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens a connection pool, verifies it, and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS station_readings (
			id BIGSERIAL PRIMARY KEY,
			station_id VARCHAR(20) NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			temperature_f DOUBLE PRECISION,
			humidity_pct DOUBLE PRECISION,
			pressure_inhg DOUBLE PRECISION,
			wind_speed_mph DOUBLE PRECISION,
			wind_direction_deg INTEGER,
			visibility_miles DOUBLE PRECISION,
			conditions TEXT,
			raw_payload JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_station_readings_ts ON station_readings (timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS forecast_readings (
			id BIGSERIAL PRIMARY KEY,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			temperature_f DOUBLE PRECISION,
			humidity_pct DOUBLE PRECISION,
			precipitation DOUBLE PRECISION,
			wind_speed_mph DOUBLE PRECISION,
			wind_direction_deg INTEGER,
			uv_index DOUBLE PRECISION,
			raw_payload JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_readings_ts ON forecast_readings (timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS marine_readings (
			id BIGSERIAL PRIMARY KEY,
			station_id VARCHAR(20) NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			timestamp TIMESTAMPTZ NOT NULL,
			water_level DOUBLE PRECISION,
			wave_height DOUBLE PRECISION,
			wave_period DOUBLE PRECISION,
			wave_direction DOUBLE PRECISION,
			water_temperature DOUBLE PRECISION,
			salinity DOUBLE PRECISION,
			raw_payload JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_marine_readings_ts ON marine_readings (timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS air_quality_readings (
			id BIGSERIAL PRIMARY KEY,
			station_id VARCHAR(100) NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			aqi INTEGER,
			pm25 DOUBLE PRECISION,
			pm10 DOUBLE PRECISION,
			no2 DOUBLE PRECISION,
			o3 DOUBLE PRECISION,
			so2 DOUBLE PRECISION,
			co DOUBLE PRECISION,
			raw_payload JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_air_quality_readings_ts ON air_quality_readings (timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS fires (
			fire_id VARCHAR(100) PRIMARY KEY,
			name TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			discovery_date DATE,
			containment_date DATE,
			size_acres DOUBLE PRECISION,
			cause TEXT,
			status TEXT,
			incident_type TEXT,
			raw_payload JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fires_updated_at ON fires (updated_at DESC)`,
		`CREATE TABLE IF NOT EXISTS webcams (
			webcam_id VARCHAR(100) PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			url TEXT NOT NULL,
			thumbnail_url TEXT,
			description TEXT,
			category VARCHAR(50),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS source_health (
			source_name VARCHAR(100) PRIMARY KEY,
			last_success_at TIMESTAMPTZ,
			last_error_at TIMESTAMPTZ,
			last_error_message TEXT,
			fetch_count INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveStationReading(ctx context.Context, r *monitor.StationReading) error {
	query := `
		INSERT INTO station_readings (
			station_id, timestamp, temperature_f, humidity_pct, pressure_inhg,
			wind_speed_mph, wind_direction_deg, visibility_miles, conditions,
			raw_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		r.StationID, r.Timestamp, r.TemperatureF, r.HumidityPct, r.PressureInHg,
		r.WindSpeedMph, r.WindDirectionDeg, r.VisibilityMiles, r.Conditions,
		[]byte(r.RawPayload), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert station reading: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveForecastReading(ctx context.Context, r *monitor.ForecastReading) error {
	query := `
		INSERT INTO forecast_readings (
			latitude, longitude, timestamp, temperature_f, humidity_pct,
			precipitation, wind_speed_mph, wind_direction_deg, uv_index,
			raw_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		r.Latitude, r.Longitude, r.Timestamp, r.TemperatureF, r.HumidityPct,
		r.Precipitation, r.WindSpeedMph, r.WindDirectionDeg, r.UVIndex,
		[]byte(r.RawPayload), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert forecast reading: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveMarineReading(ctx context.Context, r *monitor.MarineReading) error {
	query := `
		INSERT INTO marine_readings (
			station_id, latitude, longitude, timestamp, water_level,
			wave_height, wave_period, wave_direction, water_temperature,
			salinity, raw_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.ExecContext(ctx, query,
		r.StationID, r.Latitude, r.Longitude, r.Timestamp, r.WaterLevel,
		r.WaveHeight, r.WavePeriod, r.WaveDirection, r.WaterTemperature,
		r.Salinity, []byte(r.RawPayload), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert marine reading: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveAirQualityReading(ctx context.Context, r *monitor.AirQualityReading) error {
	query := `
		INSERT INTO air_quality_readings (
			station_id, latitude, longitude, timestamp, aqi,
			pm25, pm10, no2, o3, so2, co, raw_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(ctx, query,
		r.StationID, r.Latitude, r.Longitude, r.Timestamp, r.AQI,
		r.PM25, r.PM10, r.NO2, r.O3, r.SO2, r.CO,
		[]byte(r.RawPayload), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert air quality reading: %w", err)
	}
	return nil
}

func (s *PostgresStore) FireByID(ctx context.Context, fireID string) (*monitor.FireEntity, error) {
	query := `
		SELECT fire_id, name, latitude, longitude, discovery_date,
		       containment_date, size_acres, cause, status, incident_type,
		       raw_payload, created_at, updated_at
		FROM fires WHERE fire_id = $1`

	var f monitor.FireEntity
	err := s.db.GetContext(ctx, &f, query, fireID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, monitor.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fire: %w", err)
	}
	return &f, nil
}

func (s *PostgresStore) SaveFire(ctx context.Context, f *monitor.FireEntity) error {
	// The field-level merge happens in the upsert engine; this write just
	// replaces the row atomically.
	query := `
		INSERT INTO fires (
			fire_id, name, latitude, longitude, discovery_date,
			containment_date, size_acres, cause, status, incident_type,
			raw_payload, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (fire_id) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			discovery_date = EXCLUDED.discovery_date,
			containment_date = EXCLUDED.containment_date,
			size_acres = EXCLUDED.size_acres,
			cause = EXCLUDED.cause,
			status = EXCLUDED.status,
			incident_type = EXCLUDED.incident_type,
			raw_payload = EXCLUDED.raw_payload,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		f.FireID, f.Name, f.Latitude, f.Longitude, f.DiscoveryDate,
		f.ContainmentDate, f.SizeAcres, f.Cause, f.Status, f.IncidentType,
		[]byte(f.RawPayload), f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert fire: %w", err)
	}
	return nil
}

func (s *PostgresStore) FiresUpdatedSince(ctx context.Context, since time.Time) ([]monitor.FireEntity, error) {
	query := `
		SELECT fire_id, name, latitude, longitude, discovery_date,
		       containment_date, size_acres, cause, status, incident_type,
		       raw_payload, created_at, updated_at
		FROM fires WHERE updated_at >= $1
		ORDER BY updated_at DESC`

	var out []monitor.FireEntity
	if err := s.db.SelectContext(ctx, &out, query, since); err != nil {
		return nil, fmt.Errorf("select fires: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) RecentStationReadings(ctx context.Context, since time.Time) ([]monitor.StationReading, error) {
	query := `
		SELECT station_id, timestamp, temperature_f, humidity_pct,
		       pressure_inhg, wind_speed_mph, wind_direction_deg,
		       visibility_miles, conditions, raw_payload, created_at
		FROM station_readings WHERE timestamp >= $1
		ORDER BY timestamp DESC`

	var out []monitor.StationReading
	if err := s.db.SelectContext(ctx, &out, query, since); err != nil {
		return nil, fmt.Errorf("select station readings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) RecentForecastReadings(ctx context.Context, since time.Time) ([]monitor.ForecastReading, error) {
	query := `
		SELECT latitude, longitude, timestamp, temperature_f, humidity_pct,
		       precipitation, wind_speed_mph, wind_direction_deg, uv_index,
		       raw_payload, created_at
		FROM forecast_readings WHERE timestamp >= $1
		ORDER BY timestamp DESC`

	var out []monitor.ForecastReading
	if err := s.db.SelectContext(ctx, &out, query, since); err != nil {
		return nil, fmt.Errorf("select forecast readings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) RecentMarineReadings(ctx context.Context, since time.Time) ([]monitor.MarineReading, error) {
	query := `
		SELECT station_id, latitude, longitude, timestamp, water_level,
		       wave_height, wave_period, wave_direction, water_temperature,
		       salinity, raw_payload, created_at
		FROM marine_readings WHERE timestamp >= $1
		ORDER BY timestamp DESC`

	var out []monitor.MarineReading
	if err := s.db.SelectContext(ctx, &out, query, since); err != nil {
		return nil, fmt.Errorf("select marine readings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) RecentAirQualityReadings(ctx context.Context, since time.Time) ([]monitor.AirQualityReading, error) {
	query := `
		SELECT station_id, latitude, longitude, timestamp, aqi,
		       pm25, pm10, no2, o3, so2, co, raw_payload, created_at
		FROM air_quality_readings WHERE timestamp >= $1
		ORDER BY timestamp DESC`

	var out []monitor.AirQualityReading
	if err := s.db.SelectContext(ctx, &out, query, since); err != nil {
		return nil, fmt.Errorf("select air quality readings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveWebcam(ctx context.Context, w *monitor.Webcam) error {
	query := `
		INSERT INTO webcams (
			webcam_id, name, location, latitude, longitude, url,
			thumbnail_url, description, category, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (webcam_id) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			url = EXCLUDED.url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			is_active = EXCLUDED.is_active`

	_, err := s.db.ExecContext(ctx, query,
		w.WebcamID, w.Name, w.Location, w.Latitude, w.Longitude, w.URL,
		w.ThumbnailURL, w.Description, w.Category, w.IsActive, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert webcam: %w", err)
	}
	return nil
}

func (s *PostgresStore) ActiveWebcams(ctx context.Context) ([]monitor.Webcam, error) {
	query := `
		SELECT webcam_id, name, location, latitude, longitude, url,
		       thumbnail_url, description, category, is_active, created_at
		FROM webcams WHERE is_active = TRUE
		ORDER BY webcam_id`

	var out []monitor.Webcam
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("select webcams: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SourceHealthByName(ctx context.Context, name string) (*monitor.SourceHealth, error) {
	query := `
		SELECT source_name, last_success_at, last_error_at,
		       last_error_message, fetch_count, error_count, is_active
		FROM source_health WHERE source_name = $1`

	var h monitor.SourceHealth
	err := s.db.GetContext(ctx, &h, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, monitor.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source health: %w", err)
	}
	return &h, nil
}

func (s *PostgresStore) SaveSourceHealth(ctx context.Context, h *monitor.SourceHealth) error {
	query := `
		INSERT INTO source_health (
			source_name, last_success_at, last_error_at,
			last_error_message, fetch_count, error_count, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (source_name) DO UPDATE SET
			last_success_at = EXCLUDED.last_success_at,
			last_error_at = EXCLUDED.last_error_at,
			last_error_message = EXCLUDED.last_error_message,
			fetch_count = EXCLUDED.fetch_count,
			error_count = EXCLUDED.error_count,
			is_active = EXCLUDED.is_active`

	_, err := s.db.ExecContext(ctx, query,
		h.SourceName, h.LastSuccessAt, h.LastErrorAt,
		h.LastErrorMessage, h.FetchCount, h.ErrorCount, h.IsActive,
	)
	if err != nil {
		return fmt.Errorf("upsert source health: %w", err)
	}
	return nil
}

func (s *PostgresStore) AllSourceHealth(ctx context.Context) ([]monitor.SourceHealth, error) {
	query := `
		SELECT source_name, last_success_at, last_error_at,
		       last_error_message, fetch_count, error_count, is_active
		FROM source_health ORDER BY source_name`

	var out []monitor.SourceHealth
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("select source health: %w", err)
	}
	return out, nil
}

// HealthCheck pings the database with a short deadline.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
