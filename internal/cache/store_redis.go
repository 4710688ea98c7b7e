// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Opiniated default timeouts for Redis operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// redisKeyPrefix namespaces SDK cache entries inside a shared Redis.
const redisKeyPrefix = "joury:cache:"

// NewRedisClient parses a Redis URL and returns a ready-to-use client.
//
// # Parameters
//   - context: Context for the initial ping.
//   - redisURL: Redis connection URL.
//   - logger: Structured logger for connection events.
func NewRedisClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	// Pool configuration Tuning
	options.PoolSize = 10
	options.MinIdleConns = 2
	options.MaxIdleConns = 5

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	// Validate connectivity immediately at startup.
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	logger.Info("redis cache tier connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// RedisStore implements [TierStore] on a shared Redis instance.
//
// Intended for server-side embeddings of the SDK where a per-device cache
// directory makes no sense. Expiry is delegated to Redis key TTLs, so the
// expired-but-unread leak of the disk tier cannot occur here; [Never]
// entries are stored without a TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client as a persistent cache tier.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Set upserts the entry under the key, mirroring its expiry as a Redis TTL.

Parameters:
  - context: context.Context
  - key: string
  - entry: *Entry

Returns:
  - error: Serialization or connectivity failures
*/
func (store *RedisStore) Set(context stdctx.Context, key string, entry *Entry) error {

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache_redis_encode_failed: %w", err)
	}

	ttl, live := redisTTL(entry)
	if !live {
		// Already expired; storing it would be wasted work.
		return nil
	}

	if err := store.client.Set(context, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache_redis_set_failed: %w", err)
	}

	return nil
}

// redisTTL derives the Redis key TTL from the entry's own timestamps, not
// the wall clock: the owning cache may run on an injected clock and the two
// must not diverge. Redis TTL 0 means "no expiry", which is what [Never]
// needs; an entry already expired at write time reports live=false.
func redisTTL(entry *Entry) (ttl time.Duration, live bool) {
	ttl = entry.Expiration.Sub(entry.CachedAt)
	if ttl > Never/2 {
		return 0, true
	}
	if ttl <= 0 {
		return 0, false
	}
	return ttl, true
}

/*
Get retrieves and decodes the entry for the key.

Description: redis.Nil and undecodable payloads are both reported as a miss;
corrupt payloads are deleted first.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - *Entry: nil on miss
  - error: Connectivity failures only
*/
func (store *RedisStore) Get(context stdctx.Context, key string) (*Entry, error) {

	data, err := store.client.Get(context, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache_redis_get_failed: %w", err)
	}

	entry := &Entry{}
	if err := json.Unmarshal(data, entry); err != nil {
		_ = store.client.Del(context, redisKeyPrefix+key).Err()
		return nil, nil
	}

	return entry, nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (store *RedisStore) Delete(context stdctx.Context, key string) error {
	if err := store.client.Del(context, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cache_redis_delete_failed: %w", err)
	}
	return nil
}

// Clear removes every SDK-owned key, leaving foreign keys untouched.
func (store *RedisStore) Clear(context stdctx.Context) error {

	iter := store.client.Scan(context, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(context) {
		if err := store.client.Del(context, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache_redis_clear_failed: %w", err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache_redis_scan_failed: %w", err)
	}

	return nil
}

// SweepExpired is a no-op: Redis evicts expired keys server-side.
func (store *RedisStore) SweepExpired(stdctx.Context, time.Time) (int, error) {
	return 0, nil
}
