package storage

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store, used in tests and for throwaway sessions.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves map[string]int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), saves: make(map[string]int)}
}

func (m *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.saves[key]++
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Saves reports how many times key has been written.
func (m *MemoryStore) Saves(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[key]
}
