package service

import (
	"context"
	"sync"
	"time"
)

// SettledCache remembers listings this engine already settled so a sweep can
// skip them without re-reading the store. Purely an optimization: the
// authoritative idempotency fences are the activity-log check and the
// conditional settlement update.
type SettledCache interface {
	Contains(ctx context.Context, listingID string) bool
	Add(ctx context.Context, listingID string)
}

// MemorySettledCache is a process-local bounded implementation. Entries
// expire after the TTL; when the cache is full the oldest entry is evicted.
type MemorySettledCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]time.Time
}

func NewMemorySettledCache(maxSize int, ttl time.Duration) *MemorySettledCache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &MemorySettledCache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]time.Time),
	}
}

func (c *MemorySettledCache) Contains(_ context.Context, listingID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	addedAt, ok := c.entries[listingID]
	if !ok {
		return false
	}
	if c.ttl > 0 && time.Since(addedAt) > c.ttl {
		delete(c.entries, listingID)
		return false
	}
	return true
}

func (c *MemorySettledCache) Add(_ context.Context, listingID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.ttl > 0 {
		for id, addedAt := range c.entries {
			if now.Sub(addedAt) > c.ttl {
				delete(c.entries, id)
			}
		}
	}
	if len(c.entries) >= c.maxSize {
		var oldestID string
		var oldestAt time.Time
		for id, addedAt := range c.entries {
			if oldestID == "" || addedAt.Before(oldestAt) {
				oldestID = id
				oldestAt = addedAt
			}
		}
		delete(c.entries, oldestID)
	}
	c.entries[listingID] = now
}

func (c *MemorySettledCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
