// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore implements [Store] with a mutex-guarded map.
//
// Values live only for the process lifetime. Intended for tests and for host
// applications that explicitly opt out of on-disk credentials.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Set upserts the value under the given key.
func (store *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	// Copy so the caller cannot mutate the stored bytes afterwards.
	buf := make([]byte, len(value))
	copy(buf, value)
	store.values[key] = buf

	return nil
}

// Get returns the stored value, or [ErrNotFound] if the key is absent.
func (store *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.values[key]
	if !ok {
		return nil, ErrNotFound
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	return buf, nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.values, key)
	return nil
}
