package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fairchild/envmonitor/internal/dashboard"
	"github.com/fairchild/envmonitor/internal/metrics"
	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/store"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	memStore := store.NewMemoryStore(0)
	dashboards := dashboard.NewService(memStore, collector, 0)
	sources := monitor.NewService(nil, monitor.NewHealthTracker(memStore), collector)

	RegisterRoutes(app, dashboards, sources, registry)
	return app
}

func TestDashboardDataDefaultWindow(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/data", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	for _, key := range []string{
		"recentWeatherData", "recentMeteoData", "recentMarineData",
		"recentAirQualityData", "recentFireData", "activeWebcams", "dataSourceStatuses",
	} {
		if _, ok := payload[key]; !ok {
			t.Errorf("response missing key %q", key)
		}
	}
}

// TestDashboardHoursValidation verifies the hours parameter is bounded and
// must be numeric.
func TestDashboardHoursValidation(t *testing.T) {
	app := newTestApp(t)

	for _, query := range []string{"hours=abc", "hours=0", "hours=-5"} {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/data?"+query, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", query, http.StatusBadRequest, resp.StatusCode)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/data?hours=48", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestRefreshRejectsUnknownSource(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/refresh/bogus", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestRefreshAcceptsKnownSourceCaseInsensitive(t *testing.T) {
	app := fiber.New()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	memStore := store.NewMemoryStore(0)

	adapter := &staticAdapter{name: "weather.gov", token: "weather"}
	sources := monitor.NewService([]monitor.Adapter{adapter}, monitor.NewHealthTracker(memStore), collector)
	dashboards := dashboard.NewService(memStore, collector, 0)
	RegisterRoutes(app, dashboards, sources, registry)

	for _, source := range []string{"weather", "WEATHER", "Weather"} {
		req := httptest.NewRequest(http.MethodPost, "/dashboard/refresh/"+source, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected status %d, got %d", source, http.StatusOK, resp.StatusCode)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if payload.Message != "Refresh initiated for "+source {
			t.Errorf("message = %q", payload.Message)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

// staticAdapter is a no-op source used to exercise the refresh route.
type staticAdapter struct {
	name  string
	token string
}

func (a *staticAdapter) Name() string                     { return a.name }
func (a *staticAdapter) Token() string                    { return a.token }
func (a *staticAdapter) DefaultTargets() []monitor.Target { return nil }

func (a *staticAdapter) Fetch(ctx context.Context, _ monitor.Target) error { return nil }
