package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fairchild/envmonitor/internal/monitor"
)

// WildfireAdapter ingests active fire perimeters from the NIFC ArcGIS feed.
// The feed is a single bulk query: DefaultTargets is one empty target, and a
// fetch upserts every returned incident. Features without an INCIDENT_ID are
// skipped while the rest continue.
type WildfireAdapter struct {
	upserter *monitor.FireUpserter
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewWildfireAdapter creates the adapter. baseURL defaults to the NIFC
// current wildland fire perimeters service when empty.
func NewWildfireAdapter(client *http.Client, upserter *monitor.FireUpserter, baseURL string) *WildfireAdapter {
	if baseURL == "" {
		baseURL = "https://services3.arcgis.com/T4QMspbfLg3qTGWY/arcgis/rest/services/Current_WildlandFire_Perimeters/FeatureServer/0/query"
	}
	return &WildfireAdapter{
		upserter: upserter,
		baseURL:  baseURL,
		httpCfg:  HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit:  newCircuitBreaker("fire-data"),
	}
}

func (a *WildfireAdapter) Name() string  { return "fire-data" }
func (a *WildfireAdapter) Token() string { return "fire" }

func (a *WildfireAdapter) DefaultTargets() []monitor.Target {
	return []monitor.Target{{}}
}

func (a *WildfireAdapter) Fetch(ctx context.Context, _ monitor.Target) error {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("where", "1=1")
		values.Set("outFields", "*")
		values.Set("f", "json")
		values.Set("returnGeometry", "true")
		values.Set("spatialRel", "esriSpatialRelIntersects")
		values.Set("outSR", "4326")

		u := fmt.Sprintf("%s?%s", a.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := fetchBody(ctx, a.httpCfg, a.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("fetch fire perimeters: %w", err)
	}

	var envelope struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode fire perimeters: %w", err)
	}
	if len(envelope.Features) == 0 {
		slog.Warn("fire perimeter response has no features")
		return nil
	}

	processed := 0
	for _, raw := range envelope.Features {
		fire, err := parseFireFeature(raw)
		if err != nil {
			slog.Debug("skipping fire feature", "error", err)
			continue
		}
		if err := a.upserter.Upsert(ctx, fire); err != nil {
			return fmt.Errorf("upsert fire %s: %w", fire.FireID, err)
		}
		processed++
	}

	slog.Info("processed fire perimeters", "count", processed, "features", len(envelope.Features))
	return nil
}

func parseFireFeature(raw json.RawMessage) (*monitor.FireEntity, error) {
	var feature struct {
		Attributes *struct {
			IncidentID      *string  `json:"INCIDENT_ID"`
			IncidentName    *string  `json:"INCIDENT_NAME"`
			DiscoveryDate   *int64   `json:"DISCOVERY_DATE"`
			ContainmentDate *int64   `json:"CONTAINMENT_DATE"`
			FireSize        *float64 `json:"FIRE_SIZE"`
			FireCause       *string  `json:"FIRE_CAUSE"`
			FireStatus      *string  `json:"FIRE_STATUS"`
			IncidentType    *string  `json:"INCIDENT_TYPE"`
		} `json:"attributes"`
		Geometry *struct {
			Rings [][][]float64 `json:"rings"`
		} `json:"geometry"`
	}

	if err := json.Unmarshal(raw, &feature); err != nil {
		return nil, fmt.Errorf("decode fire feature: %w", err)
	}
	if feature.Attributes == nil {
		return nil, fmt.Errorf("fire feature has no attributes")
	}

	attrs := feature.Attributes
	if attrs.IncidentID == nil || *attrs.IncidentID == "" {
		return nil, fmt.Errorf("fire feature has no incident id")
	}

	fire := &monitor.FireEntity{
		FireID:          *attrs.IncidentID,
		SizeAcres:       attrs.FireSize,
		DiscoveryDate:   epochMillisToDate(attrs.DiscoveryDate),
		ContainmentDate: epochMillisToDate(attrs.ContainmentDate),
		RawPayload:      raw,
	}
	if attrs.IncidentName != nil {
		fire.Name = *attrs.IncidentName
	}
	if attrs.FireCause != nil {
		fire.Cause = *attrs.FireCause
	}
	if attrs.FireStatus != nil {
		fire.Status = *attrs.FireStatus
	}
	if attrs.IncidentType != nil {
		fire.IncidentType = *attrs.IncidentType
	}

	// First vertex of the outer ring as the approximate centroid, [lon, lat].
	if feature.Geometry != nil && len(feature.Geometry.Rings) > 0 {
		ring := feature.Geometry.Rings[0]
		if len(ring) > 0 && len(ring[0]) >= 2 {
			lon, lat := ring[0][0], ring[0][1]
			fire.Longitude = &lon
			fire.Latitude = &lat
		}
	}

	return fire, nil
}

// epochMillisToDate truncates an epoch-milliseconds instant to a whole UTC day.
func epochMillisToDate(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	days := *ms / (1000 * 60 * 60 * 24)
	t := time.Unix(days*24*60*60, 0).UTC()
	return &t
}
