// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache implements the two-tier object cache that fronts the API client
for read-mostly endpoints.

Tier layout:

  - Memory: fast, bounded by entry count and total byte cost, volatile.
  - Persistent: behind the [TierStore] contract — disk files by default,
    Redis for server-side embeddings of the SDK.

Only keys on the persistence allow-list (journal entries, user profile,
settings) ever reach the persistent tier; everything enters memory.

Expiration is lazy: an entry is valid iff now is before its expiry, and
invalid entries are deleted when touched, not proactively swept. Hosts that
care about unread-and-expired persistent entries can call
[Cache.SweepExpired] at startup or on a timer.

Corruption policy: a persistent entry that fails to decode is deleted
silently and reported as a miss — never as an error to the caller.
*/
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// # Expiration Policy

const (
	// DefaultTTL applies when the caller passes a non-positive TTL.
	DefaultTTL = 30 * time.Minute

	// Never marks an entry that should not self-expire (static config).
	// It maps to a far-future expiry rather than a special case.
	Never = time.Duration(1) << 62

	// MemoryCountLimit bounds the number of entries held in memory.
	MemoryCountLimit = 100

	// MemoryCostLimit bounds the total serialized byte cost held in memory.
	MemoryCostLimit = 50 << 20 // 50 MB
)

// persistPrefixes is the allow-list of key prefixes worth keeping across
// process restarts. Everything else is memory-only.
var persistPrefixes = []string{"journal_", "user_profile", "settings_"}

// shouldPersist reports whether a key belongs on the persistent tier.
func shouldPersist(key string) bool {
	for _, prefix := range persistPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// # Entry & Tier Contract

// Entry is the stored form of a cached value: the serialized payload plus
// both timestamps, self-describing so corruption is a decode failure.
type Entry struct {
	Data       json.RawMessage `json:"data"`
	Expiration time.Time       `json:"expiration"`
	CachedAt   time.Time       `json:"cached_at"`
}

// Valid reports whether the entry is still live at the given instant.
func (e *Entry) Valid(now time.Time) bool {
	return now.Before(e.Expiration)
}

// TierStore defines the contract for the persistent cache tier.
//
// # Implementations
//
//   - [DiskStore]: one JSON file per key (canonical, per-device).
//   - [RedisStore]: shared volatile storage for server-side embeddings.
//
// Get returns (nil, nil) for a miss; implementations must swallow their own
// corruption by deleting the offending record and reporting a miss.
type TierStore interface {
	// Set upserts the entry under the key.
	Set(ctx context.Context, key string, entry *Entry) error

	// Get returns the entry, or (nil, nil) when absent or undecodable.
	// Expiration is NOT checked here; the cache owns validity.
	Get(ctx context.Context, key string) (*Entry, error)

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry in the tier.
	Clear(ctx context.Context) error

	// SweepExpired removes entries whose expiry precedes now and reports
	// how many were deleted.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// # Cache

// Cache coordinates the memory tier and a persistent [TierStore].
type Cache struct {
	mu         sync.Mutex
	memory     *memoryTier
	persistent TierStore
	log        *slog.Logger
	now        func() time.Time
}

// Option customizes cache construction.
type Option func(*Cache)

// WithClock overrides the time source. Test use only.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New constructs a [Cache] over the given persistent tier.
func New(persistent TierStore, log *slog.Logger, opts ...Option) *Cache {
	cache := &Cache{
		memory:     newMemoryTier(MemoryCountLimit, MemoryCostLimit),
		persistent: persistent,
		log:        log,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

/*
Put serializes the value and stores it in the memory tier, and — when the key
is on the persistence allow-list — in the persistent tier as well.

Description: A non-positive ttl falls back to [DefaultTTL]; [Never] produces
a far-future expiry. Persistent-tier write failures are logged and swallowed:
the memory tier already holds the value and caching is best-effort.

Parameters:
  - ctx: context.Context
  - key: string
  - value: any (must be JSON-serializable)
  - ttl: time.Duration

Returns:
  - error: serialization failures only
*/
func (cache *Cache) Put(ctx context.Context, key string, value any, ttl time.Duration) error {

	// Serialize once; both tiers share the encoded form.
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache_encode_failed: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := cache.now()
	entry := &Entry{
		Data:       data,
		Expiration: now.Add(ttl),
		CachedAt:   now,
	}

	// Memory tier takes every key regardless of the allow-list.
	cache.mu.Lock()
	cache.memory.set(key, entry, len(data))
	cache.mu.Unlock()

	// Persistent tier is allow-listed and best-effort.
	if shouldPersist(key) {
		if err := cache.persistent.Set(ctx, key, entry); err != nil {
			cache.log.Warn("cache persistent write failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

/*
Get looks the key up in the memory tier, then the persistent tier, decoding
the hit into target.

Description: Expired entries are evicted from whichever tier they were found
in, and the lookup falls through (memory → persistent) or misses. A
persistent hit is promoted back into memory. Decode failures are treated as
corruption: the record is deleted and the call reports a miss.

Parameters:
  - ctx: context.Context
  - key: string
  - target: any (pointer to the destination value)

Returns:
  - bool: true when target was populated from a live entry
*/
func (cache *Cache) Get(ctx context.Context, key string, target any) bool {

	now := cache.now()

	// 1. Memory tier.
	cache.mu.Lock()
	if entry, ok := cache.memory.get(key); ok {
		if entry.Valid(now) {
			cache.mu.Unlock()
			if err := json.Unmarshal(entry.Data, target); err != nil {
				// Type mismatch between writer and reader: treat as miss.
				cache.Remove(ctx, key)
				return false
			}
			return true
		}
		// Lazy eviction, then fall through to the persistent tier.
		cache.memory.delete(key)
	}
	cache.mu.Unlock()

	// 2. Persistent tier.
	entry, err := cache.persistent.Get(ctx, key)
	if err != nil {
		// Tier unavailability is a miss, never an error to the caller.
		cache.log.Debug("cache persistent read failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}
	if entry == nil {
		return false
	}

	if !entry.Valid(now) {
		_ = cache.persistent.Delete(ctx, key)
		return false
	}

	if err := json.Unmarshal(entry.Data, target); err != nil {
		_ = cache.persistent.Delete(ctx, key)
		return false
	}

	// Promote the hit so the next read stays in memory.
	cache.mu.Lock()
	cache.memory.set(key, entry, len(entry.Data))
	cache.mu.Unlock()

	return true
}

// Remove deletes the key from both tiers unconditionally.
func (cache *Cache) Remove(ctx context.Context, key string) {
	cache.mu.Lock()
	cache.memory.delete(key)
	cache.mu.Unlock()

	if err := cache.persistent.Delete(ctx, key); err != nil {
		cache.log.Debug("cache persistent delete failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// Clear empties the memory tier and resets the persistent tier.
func (cache *Cache) Clear(ctx context.Context) error {
	cache.mu.Lock()
	cache.memory.clear()
	cache.mu.Unlock()

	if err := cache.persistent.Clear(ctx); err != nil {
		return fmt.Errorf("cache_clear_failed: %w", err)
	}

	return nil
}

// SweepExpired removes expired entries from the persistent tier.
//
// Lazy eviction never touches entries that are expired but unread; hosts can
// call this at startup or periodically to reclaim that storage.
func (cache *Cache) SweepExpired(ctx context.Context) (int, error) {
	removed, err := cache.persistent.SweepExpired(ctx, cache.now())
	if err != nil {
		return removed, fmt.Errorf("cache_sweep_failed: %w", err)
	}

	if removed > 0 {
		cache.log.Info("cache sweep removed expired entries", slog.Int("count", removed))
	}

	return removed, nil
}
