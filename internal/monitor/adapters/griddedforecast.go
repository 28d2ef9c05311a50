package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/units"
)

// Default coordinates matching the ground-station cities.
var defaultForecastLocations = []monitor.Target{
	{Lat: 41.8781, Lon: -87.6298},   // Chicago
	{Lat: 34.0522, Lon: -118.2437},  // Los Angeles
	{Lat: 40.7128, Lon: -74.0060},   // New York
	{Lat: 39.7392, Lon: -104.9903},  // Denver
	{Lat: 29.7604, Lon: -95.3698},   // Houston
	{Lat: 47.6062, Lon: -122.3321},  // Seattle
	{Lat: 25.7617, Lon: -80.1918},   // Miami
	{Lat: 33.7490, Lon: -84.3880},   // Atlanta
}

// openMeteoTimeLayout is Open-Meteo's minute-resolution local time format.
const openMeteoTimeLayout = "2006-01-02T15:04"

// GriddedForecastAdapter ingests current conditions from the Open-Meteo
// gridded forecast API.
type GriddedForecastAdapter struct {
	store   monitor.Store
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewGriddedForecastAdapter creates the adapter. baseURL defaults to the
// public Open-Meteo API when empty.
func NewGriddedForecastAdapter(client *http.Client, store monitor.Store, baseURL string) *GriddedForecastAdapter {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1"
	}
	return &GriddedForecastAdapter{
		store:   store,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newCircuitBreaker("open-meteo"),
	}
}

func (a *GriddedForecastAdapter) Name() string  { return "open-meteo" }
func (a *GriddedForecastAdapter) Token() string { return "meteo" }

func (a *GriddedForecastAdapter) DefaultTargets() []monitor.Target {
	return defaultForecastLocations
}

func (a *GriddedForecastAdapter) Fetch(ctx context.Context, target monitor.Target) error {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.4f", target.Lat))
		values.Set("longitude", fmt.Sprintf("%.4f", target.Lon))
		values.Set("current", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,wind_direction_10m,uv_index")
		values.Set("timezone", "auto")
		values.Set("forecast_days", "1")

		u := fmt.Sprintf("%s/forecast?%s", a.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := fetchBody(ctx, a.httpCfg, a.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("fetch forecast %.4f,%.4f: %w", target.Lat, target.Lon, err)
	}

	reading, err := parseForecastResponse(body, target.Lat, target.Lon)
	if err != nil {
		return fmt.Errorf("parse forecast %.4f,%.4f: %w", target.Lat, target.Lon, err)
	}

	if err := a.store.SaveForecastReading(ctx, reading); err != nil {
		return fmt.Errorf("save forecast reading: %w", err)
	}
	return nil
}

func parseForecastResponse(body []byte, lat, lon float64) (*monitor.ForecastReading, error) {
	var payload struct {
		Current *struct {
			Time             string   `json:"time"`
			Temperature2m    *float64 `json:"temperature_2m"`
			RelativeHumidity *float64 `json:"relative_humidity_2m"`
			Precipitation    *float64 `json:"precipitation"`
			WindSpeed10m     *float64 `json:"wind_speed_10m"`
			WindDirection10m *float64 `json:"wind_direction_10m"`
			UVIndex          *float64 `json:"uv_index"`
		} `json:"current"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	if payload.Current == nil {
		return nil, fmt.Errorf("forecast has no current block")
	}

	current := payload.Current

	ts, err := time.Parse(openMeteoTimeLayout, current.Time)
	if err != nil {
		// Some deployments return seconds too.
		ts, err = time.Parse(time.RFC3339, current.Time)
		if err != nil {
			return nil, fmt.Errorf("invalid forecast time %q: %w", current.Time, err)
		}
	}

	reading := &monitor.ForecastReading{
		Latitude:      lat,
		Longitude:     lon,
		Timestamp:     ts.UTC(),
		TemperatureF:  units.ConvertPtr(current.Temperature2m, units.CelsiusToFahrenheit),
		HumidityPct:   current.RelativeHumidity,
		Precipitation: current.Precipitation,
		WindSpeedMph:  units.ConvertPtr(current.WindSpeed10m, units.MetersPerSecondToMph),
		UVIndex:       current.UVIndex,
		RawPayload:    json.RawMessage(body),
		CreatedAt:     time.Now().UTC(),
	}

	if current.WindDirection10m != nil {
		reading.WindDirectionDeg = units.Int(int(math.Round(*current.WindDirection10m)))
	}

	return reading, nil
}
