// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

/*
TestRedisTTL verifies the Redis key TTL is derived from the entry's own
timestamps, so it stays consistent with the cache's logical clock rather
than the wall clock.
*/
func TestRedisTTL(t *testing.T) {
	// A cached-at instant far from the wall clock: a wall-clock derivation
	// would produce a wildly different (negative) TTL for every case below.
	cachedAt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    Entry
		wantTTL  time.Duration
		wantLive bool
	}{
		{
			name: "thirty_minutes",
			entry: Entry{
				CachedAt:   cachedAt,
				Expiration: cachedAt.Add(30 * time.Minute),
			},
			wantTTL:  30 * time.Minute,
			wantLive: true,
		},
		{
			name: "never_maps_to_no_expiry",
			entry: Entry{
				CachedAt:   cachedAt,
				Expiration: cachedAt.Add(Never),
			},
			wantTTL:  0,
			wantLive: true,
		},
		{
			name: "already_expired_is_not_stored",
			entry: Entry{
				CachedAt:   cachedAt,
				Expiration: cachedAt.Add(-time.Minute),
			},
			wantTTL:  0,
			wantLive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ttl, live := redisTTL(&tt.entry)
			assert.Equal(t, tt.wantTTL, ttl)
			assert.Equal(t, tt.wantLive, live)
		})
	}
}
