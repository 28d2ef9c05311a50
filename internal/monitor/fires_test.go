package monitor_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/fairchild/envmonitor/internal/monitor"
	"github.com/fairchild/envmonitor/internal/store"
	"github.com/fairchild/envmonitor/internal/units"
)

func TestFireUpserterInsertsNewFire(t *testing.T) {
	st := store.NewMemoryStore(0)
	upserter := monitor.NewFireUpserter(st)
	ctx := context.Background()

	fire := &monitor.FireEntity{
		FireID:    "F-100",
		Name:      "Canyon Fire",
		SizeAcres: units.Float(320),
	}
	if err := upserter.Upsert(ctx, fire); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	stored, err := st.FireByID(ctx, "F-100")
	if err != nil {
		t.Fatalf("fire not stored: %v", err)
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped on insert")
	}
	if !stored.CreatedAt.Equal(stored.UpdatedAt) {
		t.Error("insert should stamp created and updated identically")
	}
}

func TestFireUpserterMergePreservesStoredFields(t *testing.T) {
	st := store.NewMemoryStore(0)
	upserter := monitor.NewFireUpserter(st)
	ctx := context.Background()

	discovery := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	first := &monitor.FireEntity{
		FireID:        "F-200",
		Name:          "Ridge Fire",
		Status:        "Active",
		Cause:         "Lightning",
		DiscoveryDate: &discovery,
		SizeAcres:     units.Float(100),
		RawPayload:    json.RawMessage(`{"v":1}`),
	}
	if err := upserter.Upsert(ctx, first); err != nil {
		t.Fatal(err)
	}
	createdAt := mustFire(t, st, "F-200").CreatedAt

	// A sparse follow-up carrying only a new size.
	second := &monitor.FireEntity{
		FireID:    "F-200",
		SizeAcres: units.Float(450),
	}
	if err := upserter.Upsert(ctx, second); err != nil {
		t.Fatal(err)
	}

	stored := mustFire(t, st, "F-200")
	if stored.SizeAcres == nil || *stored.SizeAcres != 450 {
		t.Errorf("size = %v, want 450", stored.SizeAcres)
	}
	if stored.Name != "Ridge Fire" || stored.Status != "Active" || stored.Cause != "Lightning" {
		t.Errorf("merge dropped stored fields: %+v", stored)
	}
	if stored.DiscoveryDate == nil || !stored.DiscoveryDate.Equal(discovery) {
		t.Errorf("discovery date = %v, want %v", stored.DiscoveryDate, discovery)
	}
	if string(stored.RawPayload) != `{"v":1}` {
		t.Errorf("raw payload = %s, want original", stored.RawPayload)
	}
	if !stored.CreatedAt.Equal(createdAt) {
		t.Error("merge must not change created timestamp")
	}
	// UpdatedAt is refreshed on every merge; on fast clocks it can land on
	// the same instant, so only assert it did not go backwards.
	if stored.UpdatedAt.Before(createdAt) {
		t.Error("updated timestamp went backwards")
	}
}

func TestFireUpserterRejectsMissingID(t *testing.T) {
	upserter := monitor.NewFireUpserter(store.NewMemoryStore(0))
	if err := upserter.Upsert(context.Background(), &monitor.FireEntity{}); err == nil {
		t.Fatal("expected error for empty fire id")
	}
}

func TestFireUpserterConcurrentSameFire(t *testing.T) {
	st := store.NewMemoryStore(0)
	upserter := monitor.NewFireUpserter(st)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			fire := &monitor.FireEntity{FireID: "F-300"}
			if n%2 == 0 {
				fire.Name = "Basin Fire"
			} else {
				fire.SizeAcres = units.Float(float64(n))
			}
			if err := upserter.Upsert(ctx, fire); err != nil {
				t.Errorf("upsert failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	stored := mustFire(t, st, "F-300")
	// Both field groups survive regardless of interleaving.
	if stored.Name != "Basin Fire" {
		t.Errorf("name = %q, want Basin Fire", stored.Name)
	}
	if stored.SizeAcres == nil {
		t.Error("size lost during concurrent merges")
	}
}

func TestMergeFireOverlaysOnlyPresentFields(t *testing.T) {
	existing := &monitor.FireEntity{
		FireID: "F-1",
		Name:   "Old Name",
		Status: "Active",
	}
	incoming := &monitor.FireEntity{
		FireID: "F-1",
		Name:   "New Name",
	}

	monitor.MergeFire(existing, incoming)

	if existing.Name != "New Name" {
		t.Errorf("name = %q, want New Name", existing.Name)
	}
	if existing.Status != "Active" {
		t.Errorf("status = %q, want Active", existing.Status)
	}
}

func mustFire(t *testing.T, st *store.MemoryStore, id string) *monitor.FireEntity {
	t.Helper()
	fire, err := st.FireByID(context.Background(), id)
	if err != nil {
		t.Fatalf("fire %s not stored: %v", id, err)
	}
	return fire
}
