// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tokenstore_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/joury-go/internal/tokenstore"
)

// stores builds one instance of every [tokenstore.Store] implementation.
func stores(t *testing.T) map[string]tokenstore.Store {
	t.Helper()

	fileStore, err := tokenstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	return map[string]tokenstore.Store{
		"file":   fileStore,
		"memory": tokenstore.NewMemoryStore(),
	}
}

/*
TestStore_RoundTrip verifies set/get returns the exact bytes written.
*/
func TestStore_RoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			value := []byte("opaque-token-bytes")

			require.NoError(t, store.Set(ctx, "joury_access_token", value))

			got, err := store.Get(ctx, "joury_access_token")
			require.NoError(t, err)
			assert.Equal(t, value, got)
		})
	}
}

/*
TestStore_Overwrite verifies a second set replaces the first value whole.
*/
func TestStore_Overwrite(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "k", []byte("first")))
			require.NoError(t, store.Set(ctx, "k", []byte("second-longer")))

			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("second-longer"), got)
		})
	}
}

/*
TestStore_GetMissing verifies the NotFound sentinel for absent keys.
*/
func TestStore_GetMissing(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "never_written")
			assert.ErrorIs(t, err, tokenstore.ErrNotFound)
		})
	}
}

/*
TestStore_DeleteIdempotent verifies delete succeeds on present and absent keys.
*/
func TestStore_DeleteIdempotent(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "k", []byte("v")))
			require.NoError(t, store.Delete(ctx, "k"))

			_, err := store.Get(ctx, "k")
			assert.ErrorIs(t, err, tokenstore.ErrNotFound)

			// Second delete of the same key must also succeed.
			assert.NoError(t, store.Delete(ctx, "k"))
		})
	}
}

/*
TestFileStore_Permissions verifies value files are owner-only.
*/
func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	dir := t.TempDir()
	store, err := tokenstore.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "joury_refresh_token", []byte("secret")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	info, err := os.Stat(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

/*
TestFileStore_SurvivesReopen verifies values persist across store instances.
*/
func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := tokenstore.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "joury_device_id", []byte("device-1")))

	// A fresh instance over the same directory simulates process restart.
	second, err := tokenstore.NewFileStore(dir)
	require.NoError(t, err)

	got, err := second.Get(ctx, "joury_device_id")
	require.NoError(t, err)
	assert.Equal(t, []byte("device-1"), got)
}
