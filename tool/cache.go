package tool

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Cache stores serialized tool results. Each entry carries the TTL it was
// stored with; expired entries are never returned.
type Cache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error
	// PurgeExpired removes expired entries and returns how many were removed.
	PurgeExpired(ctx context.Context) (int, error)
}

// CacheKey hashes the tool name and the JSON encoding of params. Map keys are
// encoded in sorted order so equal parameter sets produce equal keys.
func CacheKey(name string, params map[string]any) (string, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("serialize parameters: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil)), nil
}

type cacheEntry struct {
	value    json.RawMessage
	inserted time.Time
	ttl      time.Duration
}

func (e cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.inserted) >= e.ttl
}

// MemoryCacheOptions configure a MemoryCache.
type MemoryCacheOptions struct {
	// Now returns the current time (defaults to time.Now).
	Now func() time.Time
}

// MemoryCache is an in-process Cache guarded by a RWMutex. Expired entries are
// dropped lazily on lookup and by PurgeExpired.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache(optFns ...func(o *MemoryCacheOptions)) *MemoryCache {
	opts := MemoryCacheOptions{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MemoryCache{entries: make(map[string]cacheEntry), now: opts.Now}
}

// Get returns a copy of the live value for key.
func (c *MemoryCache) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return cloneRaw(e.value), true, nil
}

// Set stores value under key, overwriting any prior entry.
func (c *MemoryCache) Set(_ context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: cloneRaw(value), inserted: c.now(), ttl: ttl}
	return nil
}

// PurgeExpired implements Cache.
func (c *MemoryCache) PurgeExpired(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cloneRaw(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out
}
