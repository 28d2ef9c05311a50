package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/store"
)

const airQualityFixture = `[
	{"DateObserved": "2024-03-15", "HourObserved": 12, "ParameterName": "PM2.5", "AQI": 42, "Value": 10.1},
	{"DateObserved": "2024-03-15", "HourObserved": 12, "ParameterName": "O3", "AQI": 35, "Value": 0.041}
]`

func TestAirQualityAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("API_KEY") != "test-key" {
			t.Errorf("API_KEY = %q", q.Get("API_KEY"))
		}
		if q.Get("distance") != "25" {
			t.Errorf("distance = %q", q.Get("distance"))
		}
		w.Write([]byte(airQualityFixture))
	}))
	defer srv.Close()

	st := store.NewMemoryStore(0)
	adapter := NewAirQualityAdapter(srv.Client(), st, srv.URL, "test-key")

	target := monitor.Target{Name: "Chicago", Lat: 41.8781, Lon: -87.6298}
	if err := adapter.Fetch(context.Background(), target); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	readings, err := st.RecentAirQualityReadings(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}

	r := readings[0]
	if r.StationID != "Chicago" {
		t.Errorf("station id = %q", r.StationID)
	}
	// First array entry wins.
	if r.AQI == nil || *r.AQI != 42 {
		t.Errorf("aqi = %v, want 42", r.AQI)
	}
	if r.PM25 == nil || *r.PM25 != 10.1 {
		t.Errorf("pm25 = %v, want 10.1", r.PM25)
	}
	if r.O3 != nil {
		t.Errorf("o3 = %v, want nil", r.O3)
	}
	if time.Since(r.Timestamp) > time.Minute {
		t.Errorf("timestamp %v not stamped at parse time", r.Timestamp)
	}
}

func TestAirQualityAdapterPollutantSwitch(t *testing.T) {
	cases := []struct {
		parameter string
		check     func(r monitor.AirQualityReading) *float64
	}{
		{"PM2.5", func(r monitor.AirQualityReading) *float64 { return r.PM25 }},
		{"PM10", func(r monitor.AirQualityReading) *float64 { return r.PM10 }},
		{"NO2", func(r monitor.AirQualityReading) *float64 { return r.NO2 }},
		{"O3", func(r monitor.AirQualityReading) *float64 { return r.O3 }},
		{"SO2", func(r monitor.AirQualityReading) *float64 { return r.SO2 }},
		{"CO", func(r monitor.AirQualityReading) *float64 { return r.CO }},
	}

	for _, tc := range cases {
		t.Run(tc.parameter, func(t *testing.T) {
			body := `[{"ParameterName": "` + tc.parameter + `", "AQI": 10, "Value": 7.5}]`
			reading, err := parseAirQualityResponse([]byte(body), "Denver", 39.7392, -104.9903)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			v := tc.check(*reading)
			if v == nil || *v != 7.5 {
				t.Errorf("%s = %v, want 7.5", tc.parameter, v)
			}
		})
	}
}

func TestAirQualityAdapterEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	st := store.NewMemoryStore(0)
	adapter := NewAirQualityAdapter(srv.Client(), st, srv.URL, "test-key")

	if err := adapter.Fetch(context.Background(), monitor.Target{Name: "Miami"}); err == nil {
		t.Fatal("expected error for empty observation array")
	}
}

func TestAirQualityAdapterRequiresAPIKey(t *testing.T) {
	st := store.NewMemoryStore(0)
	adapter := NewAirQualityAdapter(http.DefaultClient, st, "http://unused", "")

	if err := adapter.Fetch(context.Background(), monitor.Target{Name: "Chicago"}); err == nil {
		t.Fatal("expected error when api key is not configured")
	}
}
