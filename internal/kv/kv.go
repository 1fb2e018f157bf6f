// Package kv abstracts the durable key-value store the snapshot lives
// in. The file-backed implementation mirrors how a browser would keep
// one JSON value under one well-known key, with crash-safe writes.
package kv

// Store is a minimal durable key-value store. Implementations must make
// Set all-or-nothing: a reader never observes a partially written value.
type Store interface {
	// Get returns the value for key. The second result is false when
	// the key is absent.
	Get(key string) ([]byte, bool, error)

	// Set durably associates key with value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
