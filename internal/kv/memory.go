package kv

import (
	"errors"
	"sync"
)

// ErrWriteFailed is returned by a MemStore configured to refuse writes.
var ErrWriteFailed = errors.New("kv: write failed")

// MemStore is an in-memory Store. It backs the degraded in-memory-only
// mode when durable storage is unavailable, and makes failure paths easy
// to exercise in tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string][]byte

	// FailWrites makes Set and Delete fail, simulating quota or access
	// errors from the durable store.
	FailWrites bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: map[string][]byte{}}
}

// Get reads the value for key.
func (m *MemStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores a copy of value under key.
func (m *MemStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrWriteFailed
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	return nil
}

// Delete removes key.
func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrWriteFailed
	}
	delete(m.values, key)
	return nil
}
