package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	val       []byte
	expiresAt time.Time // zero => never expires
}

// MemoryCache is the in-process store. It is not authoritative: entries
// live only as long as the process and expire lazily on read.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.items, key)
		return nil, false, nil
	}
	out := make([]byte, len(entry.val))
	copy(out, entry.val)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, val []byte, ttlSeconds int) error {
	stored := make([]byte, len(val))
	copy(stored, val)

	entry := memoryEntry{val: stored}
	c.mu.Lock()
	if ttlSeconds > 0 {
		entry.expiresAt = c.now().Add(time.Duration(ttlSeconds) * time.Second)
	}
	c.items[key] = entry
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
