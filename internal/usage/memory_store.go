package usage

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps blobs in process memory. Used for local development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.blobs[key]), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	m.blobs[key] = slices.Clone(data)
	m.mu.Unlock()
	return nil
}
