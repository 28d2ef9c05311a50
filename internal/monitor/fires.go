package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// FireUpserter merges freshly parsed fire entities into stored ones. The
// read-merge-write cycle is serialized per FireID so overlapping wildfire
// bulk jobs cannot interleave on the same incident.
type FireUpserter struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFireUpserter creates a FireUpserter backed by the given store.
func NewFireUpserter(store Store) *FireUpserter {
	return &FireUpserter{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Upsert inserts a new fire or merges the incoming entity into the stored
// one. UpdatedAt is refreshed on every merge whether or not a field changed.
func (u *FireUpserter) Upsert(ctx context.Context, incoming *FireEntity) error {
	if incoming.FireID == "" {
		return errors.New("fire entity has no fire id")
	}

	lock := u.lockFor(incoming.FireID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()

	existing, err := u.store.FireByID(ctx, incoming.FireID)
	if errors.Is(err, ErrNotFound) {
		incoming.CreatedAt = now
		incoming.UpdatedAt = now
		if err := u.store.SaveFire(ctx, incoming); err != nil {
			return fmt.Errorf("insert fire %s: %w", incoming.FireID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load fire %s: %w", incoming.FireID, err)
	}

	MergeFire(existing, incoming)
	existing.UpdatedAt = now

	if err := u.store.SaveFire(ctx, existing); err != nil {
		return fmt.Errorf("update fire %s: %w", incoming.FireID, err)
	}
	return nil
}

// MergeFire overlays the non-empty fields of incoming onto existing. Absent
// incoming fields leave the stored values untouched: the perimeter feed is
// not guaranteed to return the full attribute set on every ingest.
func MergeFire(existing, incoming *FireEntity) {
	if incoming.Name != "" {
		existing.Name = incoming.Name
	}
	if incoming.Latitude != nil {
		existing.Latitude = incoming.Latitude
	}
	if incoming.Longitude != nil {
		existing.Longitude = incoming.Longitude
	}
	if incoming.DiscoveryDate != nil {
		existing.DiscoveryDate = incoming.DiscoveryDate
	}
	if incoming.ContainmentDate != nil {
		existing.ContainmentDate = incoming.ContainmentDate
	}
	if incoming.SizeAcres != nil {
		existing.SizeAcres = incoming.SizeAcres
	}
	if incoming.Cause != "" {
		existing.Cause = incoming.Cause
	}
	if incoming.Status != "" {
		existing.Status = incoming.Status
	}
	if incoming.IncidentType != "" {
		existing.IncidentType = incoming.IncidentType
	}
	if incoming.RawPayload != nil {
		existing.RawPayload = incoming.RawPayload
	}
}

func (u *FireUpserter) lockFor(fireID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	lock, ok := u.locks[fireID]
	if !ok {
		lock = &sync.Mutex{}
		u.locks[fireID] = lock
	}
	return lock
}
