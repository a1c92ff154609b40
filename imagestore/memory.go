package imagestore

import (
	"context"
	"io"
	"sync"
)

// Memory is an in-memory Resolver implementation for testing.
// It stores image bytes in memory without any backend dependency.
// Thread-safe for concurrent reads and writes.
type Memory struct {
	mu     sync.RWMutex
	images map[string][]byte
}

// NewMemory creates a new in-memory image store.
func NewMemory() *Memory {
	return &Memory{
		images: make(map[string][]byte),
	}
}

// URL resolves a key to a memory:// URL.
func (m *Memory) URL(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.images[key]; !ok {
		return "", ErrNotFound
	}
	return "memory://" + key, nil
}

// Put stores an image.
func (m *Memory) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[key] = data
	return nil
}

// Delete removes an image.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.images, key)
	return nil
}

// Bytes returns the stored image data, for tests.
func (m *Memory) Bytes(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.images[key]
	if !ok {
		return nil, false
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, true
}
