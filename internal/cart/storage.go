package cart

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Storage is the durable key-value backend carts are persisted to.
// Implementations store string-serialized blobs and make no capacity
// guarantee; Set may fail.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

func loadLines(storage Storage, key string) ([]Line, error) {
	raw, ok, err := storage.Get(key)
	if err != nil {
		return nil, fmt.Errorf("read persisted cart: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("parse persisted cart: %w", err)
	}
	return lines, nil
}

func saveLines(storage Storage, key string, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("serialize cart: %w", err)
	}
	return storage.Set(key, string(data))
}

// MemoryStorage is a process-local Storage used in tests and when no
// Redis backend is configured.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
