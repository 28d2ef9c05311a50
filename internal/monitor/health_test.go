package monitor_test

import (
	"context"
	"testing"

	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/store"
)

func TestHealthTrackerCreatesRowOnFirstOutcome(t *testing.T) {
	st := store.NewMemoryStore(0)
	tracker := monitor.NewHealthTracker(st)
	ctx := context.Background()

	if err := tracker.RecordSuccess(ctx, "weather.gov"); err != nil {
		t.Fatalf("record success: %v", err)
	}

	h, err := st.SourceHealthByName(ctx, "weather.gov")
	if err != nil {
		t.Fatalf("health row not created: %v", err)
	}
	if h.FetchCount != 1 || h.ErrorCount != 0 {
		t.Errorf("counts = %d/%d, want 1/0", h.FetchCount, h.ErrorCount)
	}
	if !h.IsActive {
		t.Error("new rows start active")
	}
	if h.LastSuccessAt == nil {
		t.Error("last success not stamped")
	}
	if h.LastErrorAt != nil {
		t.Error("last error should be unset")
	}
}

func TestHealthTrackerCountsAccumulate(t *testing.T) {
	st := store.NewMemoryStore(0)
	tracker := monitor.NewHealthTracker(st)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := tracker.RecordSuccess(ctx, "marine-data"); err != nil {
			t.Fatal(err)
		}
	}
	if err := tracker.RecordError(ctx, "marine-data", "connection refused"); err != nil {
		t.Fatal(err)
	}
	if err := tracker.RecordError(ctx, "marine-data", "timeout"); err != nil {
		t.Fatal(err)
	}

	h, err := st.SourceHealthByName(ctx, "marine-data")
	if err != nil {
		t.Fatal(err)
	}
	if h.FetchCount != 3 {
		t.Errorf("fetch count = %d, want 3", h.FetchCount)
	}
	if h.ErrorCount != 2 {
		t.Errorf("error count = %d, want 2", h.ErrorCount)
	}
	// The most recent message wins.
	if h.LastErrorMessage != "timeout" {
		t.Errorf("last error = %q, want timeout", h.LastErrorMessage)
	}
}

func TestHealthTrackerSetActive(t *testing.T) {
	st := store.NewMemoryStore(0)
	tracker := monitor.NewHealthTracker(st)
	ctx := context.Background()

	// Unknown source is a no-op, not an error.
	if err := tracker.SetActive(ctx, "fire-data", false); err != nil {
		t.Fatalf("set active on unknown source: %v", err)
	}
	if _, err := st.SourceHealthByName(ctx, "fire-data"); err == nil {
		t.Error("set active must not create rows")
	}

	if err := tracker.RecordError(ctx, "fire-data", "boom"); err != nil {
		t.Fatal(err)
	}
	if err := tracker.SetActive(ctx, "fire-data", false); err != nil {
		t.Fatal(err)
	}

	h, err := st.SourceHealthByName(ctx, "fire-data")
	if err != nil {
		t.Fatal(err)
	}
	if h.IsActive {
		t.Error("expected source to be inactive")
	}
	if h.ErrorCount != 1 {
		t.Errorf("error count = %d, want 1 (toggle must not touch history)", h.ErrorCount)
	}
}
