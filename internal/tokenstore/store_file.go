// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tokenstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore implements [Store] with one file per key inside a private
// directory.
//
// # Security
//
// The directory is created 0700 and every value file is written 0600, so
// credentials are readable only by the owning OS user. Writes go through a
// temp file and an atomic rename, which makes partially-written values
// impossible to observe.
type FileStore struct {
	dir string
}

// NewFileStore creates (if needed) the backing directory and returns a store.
func NewFileStore(dir string) (*FileStore, error) {

	// Restrictive permissions: credentials are for the owning user only.
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("tokenstore_create_dir_failed: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// path maps a logical key to its backing file. Keys are escaped so they can
// never traverse outside the store directory.
func (store *FileStore) path(key string) string {
	return filepath.Join(store.dir, url.PathEscape(key)+".cred")
}

/*
Set upserts the value under the given key.

Description: Writes to a temp file in the same directory, fsyncs, then
renames over the destination so readers see either the old or the new value.

Parameters:
  - ctx: context.Context (unused; file I/O is not cancellable mid-write)
  - key: string
  - value: []byte

Returns:
  - error: *StoreError on any storage failure
*/
func (store *FileStore) Set(_ context.Context, key string, value []byte) error {

	// Stage the write next to the destination so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(store.dir, url.PathEscape(key)+".*.tmp")
	if err != nil {
		return &StoreError{Op: "set", Key: key, Cause: err}
	}
	tmpName := tmp.Name()

	// Value files must be owner-only before any bytes land in them.
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &StoreError{Op: "set", Key: key, Cause: err}
	}

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &StoreError{Op: "set", Key: key, Cause: err}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &StoreError{Op: "set", Key: key, Cause: err}
	}

	// Atomic replace of the previous value, if any.
	if err := os.Rename(tmpName, store.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return &StoreError{Op: "set", Key: key, Cause: err}
	}

	return nil
}

/*
Get returns the stored value for the key.

Parameters:
  - ctx: context.Context (unused)
  - key: string

Returns:
  - []byte: The complete stored value
  - error: ErrNotFound if absent, *StoreError otherwise
*/
func (store *FileStore) Get(_ context.Context, key string) ([]byte, error) {

	value, err := os.ReadFile(store.path(key))

	// Map the filesystem miss to the package-level sentinel.
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Key: key, Cause: err}
	}

	return value, nil
}

/*
Delete removes the key. Deleting a missing key is not an error.

Parameters:
  - ctx: context.Context (unused)
  - key: string

Returns:
  - error: *StoreError on unexpected filesystem failures
*/
func (store *FileStore) Delete(_ context.Context, key string) error {

	err := os.Remove(store.path(key))

	// Idempotent: a missing file means the desired state is already reached.
	if err != nil && !os.IsNotExist(err) {
		return &StoreError{Op: "delete", Key: key, Cause: err}
	}

	return nil
}
