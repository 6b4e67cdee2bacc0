// internal/store/memory.go
//
// Key-value persistence contract plus its in-memory implementation.
// Values are opaque byte blobs; callers own the encoding.
//
// Characteristics of the memory backend:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied on the way in and out.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrNotFound is returned for a missing key, game or user.
var ErrNotFound = errors.New("not found")

// KV is a generic key-value store.
// Implementations are backed by memory (this file), SQLite or Redis.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// memory is an in-memory map-based KV implementation.
type memory struct {
	mu   sync.RWMutex      // guards data
	data map[string][]byte // keyed by caller key
}

// NewMemoryKV constructs a new in-memory KV.
func NewMemoryKV() KV {
	return &memory{data: make(map[string][]byte)}
}

func (m *memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return slices.Clone(v), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
