package storage

import (
	"sync"
)

// MemoryStore is a process-local Store. Its failure switches let tests stand
// in for a browser whose storage is disabled or full.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	failGet  bool
	failSet  bool
	disabled bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key, or nil when absent.
func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.disabled || m.failGet {
		return nil, ErrUnavailable
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled || m.failSet {
		return ErrUnavailable
	}
	m.data[key] = append([]byte(nil), val...)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled || m.failSet {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

// Close disables the store. Later calls return ErrUnavailable.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = true
	return nil
}

// FailReads makes Get fail until called again with false.
func (m *MemoryStore) FailReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGet = fail
}

// FailWrites makes Set and Delete fail until called again with false.
func (m *MemoryStore) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = fail
}
