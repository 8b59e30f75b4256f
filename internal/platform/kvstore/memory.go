package kvstore

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     string
	updatedAt time.Time
}

// MemoryStore is an in-process key-value store for tests and single-run deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memEntry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.data[key]
	return e.value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memEntry{value: value, updatedAt: time.Now()}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, e := range m.data {
		if e.updatedAt.Before(cutoff) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Close() error { return nil }
