package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fairchild/envmonitor/internal/monitor"
)

// Default NOAA CO-OPS tide stations along the Atlantic coast.
var defaultMarineStations = []monitor.Target{
	{ID: "8518750"}, // The Battery, NY
	{ID: "8443970"}, // Boston, MA
	{ID: "8452660"}, // Newport, RI
	{ID: "8531680"}, // Sandy Hook, NJ
	{ID: "8534720"}, // Atlantic City, NJ
	{ID: "8551910"}, // Cape May, NJ
	{ID: "8570283"}, // Ocean City Inlet, MD
	{ID: "8574680"}, // Chesapeake Bay Bridge Tunnel, VA
	{ID: "8638610"}, // Sewells Point, VA
	{ID: "8651370"}, // Duck, NC
}

// coopsTimeLayout is the CO-OPS "t" field format; times are GMT because the
// query pins time_zone=gmt.
const coopsTimeLayout = "2006-01-02 15:04"

// MarineAdapter ingests latest water levels from the NOAA CO-OPS API.
// CO-OPS encodes numeric values as JSON strings.
type MarineAdapter struct {
	store   monitor.Store
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewMarineAdapter creates the adapter. baseURL defaults to the public
// CO-OPS data API when empty.
func NewMarineAdapter(client *http.Client, store monitor.Store, baseURL string) *MarineAdapter {
	if baseURL == "" {
		baseURL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	}
	return &MarineAdapter{
		store:   store,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newCircuitBreaker("marine-data"),
	}
}

func (a *MarineAdapter) Name() string  { return "marine-data" }
func (a *MarineAdapter) Token() string { return "marine" }

func (a *MarineAdapter) DefaultTargets() []monitor.Target {
	return defaultMarineStations
}

func (a *MarineAdapter) Fetch(ctx context.Context, target monitor.Target) error {
	if target.ID == "" {
		return fmt.Errorf("marine fetch requires a station id")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("station", target.ID)
		values.Set("product", "water_level")
		values.Set("date", "latest")
		values.Set("datum", "MLLW")
		values.Set("units", "english")
		values.Set("time_zone", "gmt")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", a.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := fetchBody(ctx, a.httpCfg, a.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("fetch marine station %s: %w", target.ID, err)
	}

	reading, err := parseMarineResponse(body, target.ID)
	if err != nil {
		return fmt.Errorf("parse marine station %s: %w", target.ID, err)
	}

	if err := a.store.SaveMarineReading(ctx, reading); err != nil {
		return fmt.Errorf("save marine reading %s: %w", target.ID, err)
	}
	return nil
}

func parseMarineResponse(body []byte, stationID string) (*monitor.MarineReading, error) {
	var payload struct {
		Metadata *struct {
			Lat string `json:"lat"`
			Lon string `json:"lon"`
		} `json:"metadata"`
		Data []struct {
			T string `json:"t"`
			V string `json:"v"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode marine response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("marine response has no data points")
	}

	latest := payload.Data[0]

	ts, err := time.Parse(coopsTimeLayout, latest.T)
	if err != nil {
		return nil, fmt.Errorf("invalid marine timestamp %q: %w", latest.T, err)
	}

	reading := &monitor.MarineReading{
		StationID:  stationID,
		Timestamp:  ts.UTC(),
		WaterLevel: parseStringFloat(latest.V),
		RawPayload: json.RawMessage(body),
		CreatedAt:  time.Now().UTC(),
	}

	if payload.Metadata != nil {
		reading.Latitude = parseStringFloat(payload.Metadata.Lat)
		reading.Longitude = parseStringFloat(payload.Metadata.Lon)
	}

	return reading, nil
}

// parseStringFloat treats a missing or malformed string-encoded number as an
// absent optional field.
func parseStringFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
