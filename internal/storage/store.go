// Package storage provides abstractions for persistent data storage.
package storage

import "context"

// KVStore defines the string-keyed store the ledger persists into.
// This abstraction allows swapping storage backends (SQLite, a flat file,
// an actual browser localStorage bridge) without changing the ledger.
type KVStore interface {
	// Get returns the value stored under key. The boolean reports whether
	// the key was present; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	// Capacity and I/O failures surface as errors so the caller can warn
	// the user instead of crashing.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
