package dashboard

import (
	"sync"
	"time"
)

// snapshotCache is a TTL cache of assembled snapshots, keyed by the lookback
// window in hours. Entries are replaced wholesale; there is no partial
// invalidation because a snapshot is all-or-nothing.
type snapshotCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int]cacheEntry
}

type cacheEntry struct {
	snapshot  *Snapshot
	expiresAt time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[int]cacheEntry),
	}
}

func (c *snapshotCache) get(hours int) (*Snapshot, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[hours]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.entries, hours)
		return nil, false
	}
	return entry.snapshot, true
}

func (c *snapshotCache) put(hours int, snapshot *Snapshot) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[hours] = cacheEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().Add(c.ttl),
	}
}
