// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tokenstore provides durable, access-restricted key→bytes storage for
credentials.

It is the single custodian of the Credential Pair (access + refresh token),
the cached user profile, and the guest device identifier. All components reach
credentials through the [Store] contract; nothing else touches the backing
files.

Architecture:

  - Store: Abstract contract, so the session manager stays storage-agnostic.
  - FileStore: Canonical implementation — one 0600 file per key.
  - MemoryStore: Volatile implementation for tests and ephemeral embeddings.

Failures are fatal to the calling operation: this package performs no retry,
by design. A credential that cannot be written safely must abort the sign-in.
*/
package tokenstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Get] when no value exists for the key.
var ErrNotFound = errors.New("tokenstore: key not found")

// StoreError wraps a failure of the underlying secure storage
// (permissions, full disk, unreadable file).
type StoreError struct {
	// Op is the failing operation ("set", "get", "delete").
	Op string
	// Key is the logical key involved.
	Key string
	// Cause is the underlying storage error.
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return "tokenstore: " + e.Op + " " + e.Key + ": " + e.Cause.Error()
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *StoreError) Unwrap() error { return e.Cause }

// Store defines the contract for secure credential storage.
//
// # Guarantees
//
//   - Get never returns partial data: a value is either read whole or the
//     call fails.
//   - Delete is idempotent: deleting a missing key succeeds.
//   - Implementations are safe for concurrent use; the API client reads the
//     access token on every request.
type Store interface {
	// Set upserts the value under the given key.
	//
	// Returns a [*StoreError] if the underlying storage rejects the write.
	Set(ctx context.Context, key string, value []byte) error

	// Get returns the stored value for the key.
	//
	// Returns [ErrNotFound] if the key is absent, or a [*StoreError] for
	// any other storage failure.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the key. Succeeds even if the key does not exist.
	Delete(ctx context.Context, key string) error
}
