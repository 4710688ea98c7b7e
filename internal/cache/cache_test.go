// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/joury-go/internal/cache"
)

type entryPayload struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeClock is a manually-advanced time source so TTL tests never sleep.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newDiskCache(t *testing.T, dir string, clock *fakeClock) *cache.Cache {
	t.Helper()

	disk, err := cache.NewDiskStore(dir, testLogger())
	require.NoError(t, err)

	return cache.New(disk, testLogger(), cache.WithClock(clock.Now))
}

/*
TestCache_TTL verifies the core expiry contract: a value is readable inside
its TTL, absent past it, and physically removed from storage by the lazy read.
*/
func TestCache_TTL(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Now()}
	c := newDiskCache(t, dir, clock)
	ctx := context.Background()

	value := entryPayload{ID: "1", Content: "morning pages"}
	require.NoError(t, c.Put(ctx, "journal_2024-01-01", value, 24*time.Hour))

	// Immediately readable.
	var got entryPayload
	require.True(t, c.Get(ctx, "journal_2024-01-01", &got))
	assert.Equal(t, value, got)

	// Past the TTL: absent, and the file is gone after the lazy read.
	clock.Advance(24*time.Hour + time.Second)
	assert.False(t, c.Get(ctx, "journal_2024-01-01", &got))

	_, err := os.Stat(filepath.Join(dir, url.PathEscape("journal_2024-01-01")+".cache"))
	assert.True(t, os.IsNotExist(err))
}

/*
TestCache_DefaultTTL verifies a non-positive TTL falls back to 30 minutes.
*/
func TestCache_DefaultTTL(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newDiskCache(t, t.TempDir(), clock)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "scratch", entryPayload{ID: "1"}, 0))

	var got entryPayload
	clock.Advance(29 * time.Minute)
	assert.True(t, c.Get(ctx, "scratch", &got))

	clock.Advance(2 * time.Minute)
	assert.False(t, c.Get(ctx, "scratch", &got))
}

/*
TestCache_NeverExpires verifies the Never sentinel outlives any realistic clock.
*/
func TestCache_NeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newDiskCache(t, t.TempDir(), clock)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "settings_static", entryPayload{ID: "cfg"}, cache.Never))

	clock.Advance(10 * 365 * 24 * time.Hour)

	var got entryPayload
	assert.True(t, c.Get(ctx, "settings_static", &got))
}

/*
TestCache_PersistAllowList verifies only allow-listed prefixes reach disk and
that those survive a process restart (fresh Cache over the same directory).
*/
func TestCache_PersistAllowList(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Now()}
	first := newDiskCache(t, dir, clock)
	ctx := context.Background()

	require.NoError(t, first.Put(ctx, "journal_2024-01-01", entryPayload{ID: "j"}, time.Hour))
	require.NoError(t, first.Put(ctx, "user_profile", entryPayload{ID: "u"}, time.Hour))
	require.NoError(t, first.Put(ctx, "scratch_x", entryPayload{ID: "s"}, time.Hour))

	// scratch_x must not appear on disk.
	_, err := os.Stat(filepath.Join(dir, url.PathEscape("scratch_x")+".cache"))
	assert.True(t, os.IsNotExist(err))

	// Simulated restart: new instance, same directory, empty memory tier.
	second := newDiskCache(t, dir, clock)

	var got entryPayload
	assert.True(t, second.Get(ctx, "journal_2024-01-01", &got))
	assert.Equal(t, "j", got.ID)
	assert.True(t, second.Get(ctx, "user_profile", &got))
	assert.False(t, second.Get(ctx, "scratch_x", &got))
}

/*
TestCache_CorruptDiskEntry verifies decode failures are silent: the offending
file is deleted and the read reports a miss.
*/
func TestCache_CorruptDiskEntry(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Now()}
	c := newDiskCache(t, dir, clock)
	ctx := context.Background()

	path := filepath.Join(dir, url.PathEscape("journal_bad")+".cache")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var got entryPayload
	assert.False(t, c.Get(ctx, "journal_bad", &got))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

/*
TestCache_RemoveAndClear verifies unconditional removal from both tiers and
that clear recreates an empty usable cache directory.
*/
func TestCache_RemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Now()}
	c := newDiskCache(t, dir, clock)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "journal_a", entryPayload{ID: "a"}, time.Hour))
	require.NoError(t, c.Put(ctx, "journal_b", entryPayload{ID: "b"}, time.Hour))

	c.Remove(ctx, "journal_a")
	var got entryPayload
	assert.False(t, c.Get(ctx, "journal_a", &got))
	assert.True(t, c.Get(ctx, "journal_b", &got))

	require.NoError(t, c.Clear(ctx))
	assert.False(t, c.Get(ctx, "journal_b", &got))

	// Directory must exist and be writable again.
	require.NoError(t, c.Put(ctx, "journal_c", entryPayload{ID: "c"}, time.Hour))
	assert.True(t, c.Get(ctx, "journal_c", &got))
}

/*
TestCache_MemoryCountEviction verifies the memory tier drops the coldest
entries once the count bound is exceeded.
*/
func TestCache_MemoryCountEviction(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newDiskCache(t, t.TempDir(), clock)
	ctx := context.Background()

	// Memory-only keys (not on the allow-list) so misses cannot be served
	// from disk.
	for i := 0; i < cache.MemoryCountLimit+1; i++ {
		key := fmt.Sprintf("scratch_%03d", i)
		require.NoError(t, c.Put(ctx, key, entryPayload{ID: key}, time.Hour))
	}

	var got entryPayload
	// The first key is the coldest and must have been evicted.
	assert.False(t, c.Get(ctx, "scratch_000", &got))
	// The most recent key is still resident.
	assert.True(t, c.Get(ctx, fmt.Sprintf("scratch_%03d", cache.MemoryCountLimit), &got))
}

/*
TestCache_MemoryCostEviction verifies the byte-cost bound evicts the coldest
entries even when the count bound is nowhere near reached.
*/
func TestCache_MemoryCostEviction(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newDiskCache(t, t.TempDir(), clock)
	ctx := context.Background()

	// Six ~10 MB values cross the 50 MB cost bound at the sixth insert
	// while staying far below the count bound.
	payload := strings.Repeat("m", 10<<20)
	for i := 0; i < 6; i++ {
		key := fmt.Sprintf("scratch_big_%d", i)
		require.NoError(t, c.Put(ctx, key, entryPayload{ID: key, Content: payload}, time.Hour))
	}

	var got entryPayload
	// The coldest entry paid for the overflow.
	assert.False(t, c.Get(ctx, "scratch_big_0", &got))
	// The most recent entry is still resident.
	assert.True(t, c.Get(ctx, "scratch_big_5", &got))
	assert.Equal(t, "scratch_big_5", got.ID)
}

/*
TestCache_DiskPromotion verifies a disk hit is promoted into the memory tier.
*/
func TestCache_DiskPromotion(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Now()}
	first := newDiskCache(t, dir, clock)
	ctx := context.Background()

	require.NoError(t, first.Put(ctx, "journal_promote", entryPayload{ID: "p"}, time.Hour))

	// Fresh cache: memory empty, value only on disk.
	second := newDiskCache(t, dir, clock)
	var got entryPayload
	require.True(t, second.Get(ctx, "journal_promote", &got))

	// Delete the file behind the cache's back; a memory hit must still serve.
	require.NoError(t, os.Remove(filepath.Join(dir, url.PathEscape("journal_promote")+".cache")))
	assert.True(t, second.Get(ctx, "journal_promote", &got))
}

/*
TestCache_SweepExpired verifies the explicit sweep removes expired and corrupt
files while keeping live ones.
*/
func TestCache_SweepExpired(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Now()}
	c := newDiskCache(t, dir, clock)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "journal_old", entryPayload{ID: "old"}, time.Minute))
	require.NoError(t, c.Put(ctx, "journal_new", entryPayload{ID: "new"}, 48*time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.cache"), []byte("???"), 0o600))

	clock.Advance(time.Hour)

	removed, err := c.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var got entryPayload
	assert.True(t, c.Get(ctx, "journal_new", &got))
}
