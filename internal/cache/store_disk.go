// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// cacheFileExt marks files owned by the disk tier; foreign files inside the
// cache directory are never touched.
const cacheFileExt = ".cache"

// DiskStore implements [TierStore] with one JSON file per key under a
// dedicated cache directory.
//
// Writes are staged in a temp file and renamed into place, so concurrent
// readers observe either the previous entry or the new one, never a torn
// file. Undecodable files are deleted on read and reported as a miss.
type DiskStore struct {
	dir string
	log *slog.Logger
}

// NewDiskStore creates (if needed) the cache directory and returns the tier.
func NewDiskStore(dir string, log *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache_disk_create_dir_failed: %w", err)
	}

	return &DiskStore{dir: dir, log: log}, nil
}

// path maps a cache key to its backing file, escaped to stay inside dir.
func (store *DiskStore) path(key string) string {
	return filepath.Join(store.dir, url.PathEscape(key)+cacheFileExt)
}

/*
Set upserts the entry under the key via an atomic temp-file + rename write.

Parameters:
  - ctx: context.Context (unused; local file I/O)
  - key: string
  - entry: *Entry

Returns:
  - error: Serialization or filesystem failures
*/
func (store *DiskStore) Set(_ context.Context, key string, entry *Entry) error {

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache_disk_encode_failed: %w", err)
	}

	tmp, err := os.CreateTemp(store.dir, url.PathEscape(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cache_disk_stage_failed: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache_disk_write_failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache_disk_close_failed: %w", err)
	}

	if err := os.Rename(tmpName, store.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache_disk_rename_failed: %w", err)
	}

	return nil
}

/*
Get reads and decodes the entry for the key.

Description: A missing file is a plain miss. A file that exists but fails to
decode is corruption — deleted silently, reported as a miss.

Parameters:
  - ctx: context.Context (unused)
  - key: string

Returns:
  - *Entry: nil on miss
  - error: Unexpected filesystem failures only
*/
func (store *DiskStore) Get(_ context.Context, key string) (*Entry, error) {

	data, err := os.ReadFile(store.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache_disk_read_failed: %w", err)
	}

	entry := &Entry{}
	if err := json.Unmarshal(data, entry); err != nil {
		// Version mismatch or torn write from a previous crash: drop it.
		store.log.Debug("cache disk entry corrupt, deleting",
			slog.String("key", key),
			slog.Any("error", err),
		)
		_ = os.Remove(store.path(key))
		return nil, nil
	}

	return entry, nil
}

// Delete removes the key's file. Deleting a missing key is not an error.
func (store *DiskStore) Delete(_ context.Context, key string) error {
	err := os.Remove(store.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache_disk_delete_failed: %w", err)
	}
	return nil
}

// Clear recursively deletes the cache directory and recreates it empty.
func (store *DiskStore) Clear(_ context.Context) error {
	if err := os.RemoveAll(store.dir); err != nil {
		return fmt.Errorf("cache_disk_clear_failed: %w", err)
	}
	if err := os.MkdirAll(store.dir, 0o700); err != nil {
		return fmt.Errorf("cache_disk_recreate_failed: %w", err)
	}
	return nil
}

/*
SweepExpired walks the cache directory and deletes every entry whose expiry
precedes now, plus any file that no longer decodes.

Parameters:
  - ctx: context.Context (checked between files)
  - now: time.Time

Returns:
  - int: Number of files removed
  - error: Directory read failures or context cancellation
*/
func (store *DiskStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {

	dirEntries, err := os.ReadDir(store.dir)
	if err != nil {
		return 0, fmt.Errorf("cache_disk_sweep_failed: %w", err)
	}

	removed := 0
	for _, dirEntry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), cacheFileExt) {
			continue
		}

		path := filepath.Join(store.dir, dirEntry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		entry := &Entry{}
		if err := json.Unmarshal(data, entry); err != nil || !entry.Valid(now) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}

	return removed, nil
}
