package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/units"
)

// Default weather.gov stations covering the monitored regions.
var defaultStations = []monitor.Target{
	{ID: "KORD"}, // Chicago O'Hare
	{ID: "KLAX"}, // Los Angeles
	{ID: "KJFK"}, // JFK New York
	{ID: "KDEN"}, // Denver
	{ID: "KIAH"}, // Houston
	{ID: "KSEA"}, // Seattle
	{ID: "KMIA"}, // Miami
	{ID: "KATL"}, // Atlanta
}

// StationWeatherAdapter ingests latest observations from weather.gov ground
// stations.
type StationWeatherAdapter struct {
	store   monitor.Store
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewStationWeatherAdapter creates the adapter. baseURL defaults to the
// public weather.gov API when empty.
func NewStationWeatherAdapter(client *http.Client, store monitor.Store, baseURL string) *StationWeatherAdapter {
	if baseURL == "" {
		baseURL = "https://api.weather.gov"
	}
	return &StationWeatherAdapter{
		store:   store,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newCircuitBreaker("weather.gov"),
	}
}

func (a *StationWeatherAdapter) Name() string  { return "weather.gov" }
func (a *StationWeatherAdapter) Token() string { return "weather" }

func (a *StationWeatherAdapter) DefaultTargets() []monitor.Target {
	return defaultStations
}

func (a *StationWeatherAdapter) Fetch(ctx context.Context, target monitor.Target) error {
	if target.ID == "" {
		return fmt.Errorf("station weather fetch requires a station id")
	}

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/stations/%s/observations/latest", a.baseURL, target.ID)
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := fetchBody(ctx, a.httpCfg, a.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("fetch station %s: %w", target.ID, err)
	}

	reading, err := parseStationObservation(body, target.ID)
	if err != nil {
		return fmt.Errorf("parse station %s: %w", target.ID, err)
	}

	if err := a.store.SaveStationReading(ctx, reading); err != nil {
		return fmt.Errorf("save station reading %s: %w", target.ID, err)
	}
	return nil
}

// measurement is the weather.gov quality-controlled value wrapper.
type measurement struct {
	Value *float64 `json:"value"`
}

func parseStationObservation(body []byte, stationID string) (*monitor.StationReading, error) {
	var payload struct {
		Properties *struct {
			Timestamp          string      `json:"timestamp"`
			Temperature        measurement `json:"temperature"`
			RelativeHumidity   measurement `json:"relativeHumidity"`
			BarometricPressure measurement `json:"barometricPressure"`
			WindSpeed          measurement `json:"windSpeed"`
			WindDirection      measurement `json:"windDirection"`
			Visibility         measurement `json:"visibility"`
			TextDescription    string      `json:"textDescription"`
		} `json:"properties"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode observation: %w", err)
	}
	if payload.Properties == nil {
		return nil, fmt.Errorf("observation has no properties")
	}

	props := payload.Properties

	ts, err := time.Parse(time.RFC3339, props.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid observation timestamp %q: %w", props.Timestamp, err)
	}

	reading := &monitor.StationReading{
		StationID:       stationID,
		Timestamp:       ts.UTC(),
		TemperatureF:    units.ConvertPtr(props.Temperature.Value, units.CelsiusToFahrenheit),
		HumidityPct:     props.RelativeHumidity.Value,
		PressureInHg:    units.ConvertPtr(props.BarometricPressure.Value, units.PascalsToInHg),
		WindSpeedMph:    units.ConvertPtr(props.WindSpeed.Value, units.MetersPerSecondToMph),
		VisibilityMiles: units.ConvertPtr(props.Visibility.Value, units.MetersToMiles),
		Conditions:      props.TextDescription,
		RawPayload:      json.RawMessage(body),
		CreatedAt:       time.Now().UTC(),
	}

	if props.WindDirection.Value != nil {
		reading.WindDirectionDeg = units.Int(int(math.Round(*props.WindDirection.Value)))
	}

	return reading, nil
}
