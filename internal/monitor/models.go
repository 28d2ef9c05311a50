package monitor

import (
	"encoding/json"
	"time"
)

// Canonical record types, one per provider. Optional measurements are
// pointers: an absent or null upstream field stays nil and is omitted from
// JSON. Every record keeps the raw provider payload verbatim for audit.

// StationReading is a normalized ground-station observation (weather.gov).
type StationReading struct {
	StationID       string          `json:"stationId" db:"station_id"`
	Timestamp       time.Time       `json:"timestamp" db:"timestamp"`
	TemperatureF    *float64        `json:"temperature,omitempty" db:"temperature_f"`
	HumidityPct     *float64        `json:"humidity,omitempty" db:"humidity_pct"`
	PressureInHg    *float64        `json:"pressure,omitempty" db:"pressure_inhg"`
	WindSpeedMph    *float64        `json:"windSpeed,omitempty" db:"wind_speed_mph"`
	WindDirectionDeg *int           `json:"windDirection,omitempty" db:"wind_direction_deg"`
	VisibilityMiles *float64        `json:"visibility,omitempty" db:"visibility_miles"`
	Conditions      string          `json:"weatherConditions,omitempty" db:"conditions"`
	RawPayload      json.RawMessage `json:"-" db:"raw_payload"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// ForecastReading is a normalized gridded-forecast sample (Open-Meteo).
type ForecastReading struct {
	Latitude         float64         `json:"latitude" db:"latitude"`
	Longitude        float64         `json:"longitude" db:"longitude"`
	Timestamp        time.Time       `json:"timestamp" db:"timestamp"`
	TemperatureF     *float64        `json:"temperature2m,omitempty" db:"temperature_f"`
	HumidityPct      *float64        `json:"relativeHumidity2m,omitempty" db:"humidity_pct"`
	Precipitation    *float64        `json:"precipitation,omitempty" db:"precipitation"`
	WindSpeedMph     *float64        `json:"windSpeed10m,omitempty" db:"wind_speed_mph"`
	WindDirectionDeg *int            `json:"windDirection10m,omitempty" db:"wind_direction_deg"`
	UVIndex          *float64        `json:"uvIndex,omitempty" db:"uv_index"`
	RawPayload       json.RawMessage `json:"-" db:"raw_payload"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// MarineReading is a normalized tide/marine observation (NOAA CO-OPS).
// The water_level product only populates WaterLevel; the remaining fields
// exist for other CO-OPS products sharing the same table.
type MarineReading struct {
	StationID        string          `json:"stationId" db:"station_id"`
	Latitude         *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64        `json:"longitude,omitempty" db:"longitude"`
	Timestamp        time.Time       `json:"timestamp" db:"timestamp"`
	WaterLevel       *float64        `json:"waterLevel,omitempty" db:"water_level"`
	WaveHeight       *float64        `json:"waveHeight,omitempty" db:"wave_height"`
	WavePeriod       *float64        `json:"wavePeriod,omitempty" db:"wave_period"`
	WaveDirection    *float64        `json:"waveDirection,omitempty" db:"wave_direction"`
	WaterTemperature *float64        `json:"waterTemperature,omitempty" db:"water_temperature"`
	Salinity         *float64        `json:"salinity,omitempty" db:"salinity"`
	RawPayload       json.RawMessage `json:"-" db:"raw_payload"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// AirQualityReading is a normalized AirNow observation. Exactly one pollutant
// field is set per reading, depending on which parameter the closest
// monitoring station reported.
type AirQualityReading struct {
	StationID  string          `json:"stationId" db:"station_id"`
	Latitude   float64         `json:"latitude" db:"latitude"`
	Longitude  float64         `json:"longitude" db:"longitude"`
	Timestamp  time.Time       `json:"timestamp" db:"timestamp"`
	AQI        *int            `json:"aqi,omitempty" db:"aqi"`
	PM25       *float64        `json:"pm25,omitempty" db:"pm25"`
	PM10       *float64        `json:"pm10,omitempty" db:"pm10"`
	NO2        *float64        `json:"no2,omitempty" db:"no2"`
	O3         *float64        `json:"o3,omitempty" db:"o3"`
	SO2        *float64        `json:"so2,omitempty" db:"so2"`
	CO         *float64        `json:"co,omitempty" db:"co"`
	RawPayload json.RawMessage `json:"-" db:"raw_payload"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// FireEntity is a long-lived wildfire incident, identified by FireID across
// repeated ingests. Unlike readings it is mutated in place: see MergeFire.
// Dates are truncated to whole days.
type FireEntity struct {
	FireID          string          `json:"fireId" db:"fire_id"`
	Name            string          `json:"name,omitempty" db:"name"`
	Latitude        *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64        `json:"longitude,omitempty" db:"longitude"`
	DiscoveryDate   *time.Time      `json:"discoveryDate,omitempty" db:"discovery_date"`
	ContainmentDate *time.Time      `json:"containmentDate,omitempty" db:"containment_date"`
	SizeAcres       *float64        `json:"fireSizeAcres,omitempty" db:"size_acres"`
	Cause           string          `json:"fireCause,omitempty" db:"cause"`
	Status          string          `json:"fireStatus,omitempty" db:"status"`
	IncidentType    string          `json:"incidentType,omitempty" db:"incident_type"`
	RawPayload      json.RawMessage `json:"-" db:"raw_payload"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// SourceHealth tracks fetch outcomes per named source. Rows are created
// lazily on the first success or failure and never deleted.
type SourceHealth struct {
	SourceName       string     `json:"sourceName" db:"source_name"`
	LastSuccessAt    *time.Time `json:"lastSuccessfulFetch,omitempty" db:"last_success_at"`
	LastErrorAt      *time.Time `json:"lastError,omitempty" db:"last_error_at"`
	LastErrorMessage string     `json:"errorMessage,omitempty" db:"last_error_message"`
	FetchCount       int        `json:"fetchCount" db:"fetch_count"`
	ErrorCount       int        `json:"errorCount" db:"error_count"`
	IsActive         bool       `json:"isActive" db:"is_active"`
}

// Webcam is static reference data shown on the dashboard; it is seeded at
// startup rather than ingested.
type Webcam struct {
	WebcamID     string    `json:"webcamId" db:"webcam_id"`
	Name         string    `json:"name" db:"name"`
	Location     string    `json:"location,omitempty" db:"location"`
	Latitude     *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64  `json:"longitude,omitempty" db:"longitude"`
	URL          string    `json:"url" db:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty" db:"thumbnail_url"`
	Description  string    `json:"description,omitempty" db:"description"`
	Category     string    `json:"category,omitempty" db:"category"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
