package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// HealthTracker records per-source fetch outcomes. Rows follow get-or-create
// semantics: the first success or failure for a source creates its row with
// counters at zero and IsActive true before applying the update.
//
// IsActive is an operator toggle only; the scheduler and adapters do not
// consult it.
type HealthTracker struct {
	store Store

	// Serializes read-modify-write cycles so concurrent bulk jobs cannot
	// drop counter increments.
	mu sync.Mutex
}

// NewHealthTracker creates a HealthTracker backed by the given store.
func NewHealthTracker(store Store) *HealthTracker {
	return &HealthTracker{store: store}
}

// RecordSuccess bumps the fetch counter and stamps the last success time.
func (t *HealthTracker) RecordSuccess(ctx context.Context, sourceName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.getOrCreate(ctx, sourceName)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	h.LastSuccessAt = &now
	h.FetchCount++

	if err := t.store.SaveSourceHealth(ctx, h); err != nil {
		return fmt.Errorf("save health for %s: %w", sourceName, err)
	}
	slog.Debug("recorded successful fetch", "source", sourceName, "fetch_count", h.FetchCount)
	return nil
}

// RecordError bumps the error counter and stores the message verbatim.
func (t *HealthTracker) RecordError(ctx context.Context, sourceName, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.getOrCreate(ctx, sourceName)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	h.LastErrorAt = &now
	h.LastErrorMessage = message
	h.ErrorCount++

	if err := t.store.SaveSourceHealth(ctx, h); err != nil {
		return fmt.Errorf("save health for %s: %w", sourceName, err)
	}
	slog.Warn("recorded fetch error", "source", sourceName, "error", message)
	return nil
}

// SetActive flips the operator toggle without touching history. Unknown
// sources are left alone: there is no history to annotate yet.
func (t *HealthTracker) SetActive(ctx context.Context, sourceName string, active bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.store.SourceHealthByName(ctx, sourceName)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	h.IsActive = active
	if err := t.store.SaveSourceHealth(ctx, h); err != nil {
		return fmt.Errorf("save health for %s: %w", sourceName, err)
	}
	slog.Info("set source active flag", "source", sourceName, "active", active)
	return nil
}

func (t *HealthTracker) getOrCreate(ctx context.Context, sourceName string) (*SourceHealth, error) {
	h, err := t.store.SourceHealthByName(ctx, sourceName)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load health for %s: %w", sourceName, err)
	}
	return &SourceHealth{
		SourceName: sourceName,
		IsActive:   true,
	}, nil
}
