package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/units"
)

// Default named locations for air quality monitoring.
var defaultAirQualityLocations = []monitor.Target{
	{Name: "Chicago", Lat: 41.8781, Lon: -87.6298},
	{Name: "Los Angeles", Lat: 34.0522, Lon: -118.2437},
	{Name: "New York", Lat: 40.7128, Lon: -74.0060},
	{Name: "Denver", Lat: 39.7392, Lon: -104.9903},
	{Name: "Houston", Lat: 29.7604, Lon: -95.3698},
	{Name: "Seattle", Lat: 47.6062, Lon: -122.3321},
	{Name: "Miami", Lat: 25.7617, Lon: -80.1918},
	{Name: "Atlanta", Lat: 33.7490, Lon: -84.3880},
}

// AirQualityAdapter ingests current observations from the AirNow API. The
// response is an array of nearby monitoring stations; the first (closest)
// entry wins. AirNow reports one pollutant parameter per entry and no usable
// observation instant, so readings are stamped at parse time.
type AirQualityAdapter struct {
	store   monitor.Store
	baseURL string
	apiKey  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewAirQualityAdapter creates the adapter. baseURL defaults to the public
// AirNow API when empty.
func NewAirQualityAdapter(client *http.Client, store monitor.Store, baseURL, apiKey string) *AirQualityAdapter {
	if baseURL == "" {
		baseURL = "https://www.airnowapi.org/aq"
	}
	return &AirQualityAdapter{
		store:   store,
		baseURL: baseURL,
		apiKey:  apiKey,
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newCircuitBreaker("air-quality"),
	}
}

func (a *AirQualityAdapter) Name() string  { return "air-quality" }
func (a *AirQualityAdapter) Token() string { return "airquality" }

func (a *AirQualityAdapter) DefaultTargets() []monitor.Target {
	return defaultAirQualityLocations
}

func (a *AirQualityAdapter) Fetch(ctx context.Context, target monitor.Target) error {
	if a.apiKey == "" {
		return fmt.Errorf("airnow api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "application/json")
		values.Set("latitude", fmt.Sprintf("%.4f", target.Lat))
		values.Set("longitude", fmt.Sprintf("%.4f", target.Lon))
		values.Set("distance", "25")
		values.Set("API_KEY", a.apiKey)

		u := fmt.Sprintf("%s/observation/latLong/current/?%s", a.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := fetchBody(ctx, a.httpCfg, a.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("fetch air quality %s: %w", target.Name, err)
	}

	reading, err := parseAirQualityResponse(body, target.Name, target.Lat, target.Lon)
	if err != nil {
		return fmt.Errorf("parse air quality %s: %w", target.Name, err)
	}

	if err := a.store.SaveAirQualityReading(ctx, reading); err != nil {
		return fmt.Errorf("save air quality reading %s: %w", target.Name, err)
	}
	return nil
}

func parseAirQualityResponse(body []byte, label string, lat, lon float64) (*monitor.AirQualityReading, error) {
	var payload []struct {
		AQI           *int     `json:"AQI"`
		ParameterName string   `json:"ParameterName"`
		Value         *float64 `json:"Value"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode air quality response: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("no air quality observations near %s", label)
	}

	closest := payload[0]

	reading := &monitor.AirQualityReading{
		StationID:  label,
		Latitude:   lat,
		Longitude:  lon,
		Timestamp:  time.Now().UTC(),
		AQI:        closest.AQI,
		RawPayload: json.RawMessage(body),
		CreatedAt:  time.Now().UTC(),
	}

	if closest.Value != nil {
		v := units.Float(*closest.Value)
		switch strings.ToUpper(closest.ParameterName) {
		case "PM2.5":
			reading.PM25 = v
		case "PM10":
			reading.PM10 = v
		case "NO2":
			reading.NO2 = v
		case "O3":
			reading.O3 = v
		case "SO2":
			reading.SO2 = v
		case "CO":
			reading.CO = v
		}
	}

	return reading, nil
}
