package store

import (
	"errors"
	"strings"
	"sync"
)

// MemoryStorage is an in-process LocalStorage for tests and ephemeral runs.
// It mirrors SQLiteStorage validation.
type MemoryStorage struct {
	mu     sync.RWMutex
	items  map[string]string
	closed bool
}

var _ LocalStorage = (*MemoryStorage)(nil)

var errMemoryClosed = errors.New("store: memory storage closed")

// NewMemory returns an empty MemoryStorage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, errMemoryClosed
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("store: set: key must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMemoryClosed
	}
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMemoryClosed
	}
	delete(m.items, key)
	return nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
