package adapters

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/store"
)

const forecastFixture = `{
	"latitude": 41.875,
	"longitude": -87.625,
	"current": {
		"time": "2024-03-15T13:45",
		"temperature_2m": 20.0,
		"relative_humidity_2m": 61.0,
		"precipitation": 0.4,
		"wind_speed_10m": 4.0,
		"wind_direction_10m": 189.6,
		"uv_index": 3.2
	}
}`

func TestGriddedForecastAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("current") == "" {
			t.Error("current query parameter missing")
		}
		if q.Get("timezone") != "auto" {
			t.Errorf("timezone = %q", q.Get("timezone"))
		}
		w.Write([]byte(forecastFixture))
	}))
	defer srv.Close()

	st := store.NewMemoryStore(0)
	adapter := NewGriddedForecastAdapter(srv.Client(), st, srv.URL)

	target := monitor.Target{Lat: 41.8781, Lon: -87.6298}
	if err := adapter.Fetch(context.Background(), target); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	readings, err := st.RecentForecastReadings(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}

	r := readings[0]
	if r.Latitude != target.Lat || r.Longitude != target.Lon {
		t.Errorf("coordinates = %v,%v", r.Latitude, r.Longitude)
	}
	if r.TemperatureF == nil || *r.TemperatureF != 68.0 {
		t.Errorf("temperature = %v, want 68.0", r.TemperatureF)
	}
	if r.WindSpeedMph == nil || math.Abs(*r.WindSpeedMph-8.948) > 0.001 {
		t.Errorf("wind speed = %v, want ~8.948", r.WindSpeedMph)
	}
	if r.WindDirectionDeg == nil || *r.WindDirectionDeg != 190 {
		t.Errorf("wind direction = %v, want 190", r.WindDirectionDeg)
	}
	if r.UVIndex == nil || *r.UVIndex != 3.2 {
		t.Errorf("uv index = %v, want 3.2", r.UVIndex)
	}
	want := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)
	if !r.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", r.Timestamp, want)
	}
}

func TestGriddedForecastAdapterRFC3339Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": {"time": "2024-03-15T13:45:30Z", "temperature_2m": 1.0}}`))
	}))
	defer srv.Close()

	st := store.NewMemoryStore(0)
	adapter := NewGriddedForecastAdapter(srv.Client(), st, srv.URL)

	if err := adapter.Fetch(context.Background(), monitor.Target{Lat: 1, Lon: 2}); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	readings, _ := st.RecentForecastReadings(context.Background(), time.Time{})
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	want := time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC)
	if !readings[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", readings[0].Timestamp, want)
	}
}

func TestGriddedForecastAdapterMissingCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 41.875}`))
	}))
	defer srv.Close()

	st := store.NewMemoryStore(0)
	adapter := NewGriddedForecastAdapter(srv.Client(), st, srv.URL)

	if err := adapter.Fetch(context.Background(), monitor.Target{}); err == nil {
		t.Fatal("expected error for payload without current block")
	}
}
