package moderation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type cacheEntry struct {
	verdict    Verdict
	observedAt time.Time
}

// Cache is a process-local TTL cache of moderation verdicts. It is
// advisory only: losing it on restart just means extra classifier calls.
// Expiry is checked on read; the background sweep is housekeeping.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns a live cached verdict. Expired entries are treated as
// absent regardless of whether the sweeper has removed them yet.
func (c *Cache) Get(key string) (Verdict, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.observedAt) > c.ttl {
		return Verdict{}, false
	}
	return entry.verdict, true
}

func (c *Cache) Put(key string, v Verdict) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{verdict: v, observedAt: c.now()}
	c.mu.Unlock()
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.observedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on a fixed interval until ctx is cancelled.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					slog.Debug("moderation cache sweep", "removed", n)
				}
			}
		}
	}()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
