package records

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory, preserving the
// insertion order of records. It backs tests and runs without a
// configured database.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Record)}
}

func (m *MemoryStore) Insert(_ context.Context, collection string, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneRecord(rec)
	if stored.ID() == "" {
		stored["id"] = uuid.New().String()
	}
	for _, existing := range m.collections[collection] {
		if existing.ID() == stored.ID() {
			return nil, fmt.Errorf("insert into %s: duplicate id %s", collection, stored.ID())
		}
	}
	m.collections[collection] = append(m.collections[collection], stored)
	return cloneRecord(stored), nil
}

func (m *MemoryStore) Select(_ context.Context, collection string, filter Filter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for _, rec := range m.collections[collection] {
		if matches(rec, filter) {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, collection, id string, changes Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, rec := range m.collections[collection] {
		if rec.ID() == id {
			updated := cloneRecord(rec)
			for k, v := range changes {
				if k == "id" {
					continue
				}
				updated[k] = v
			}
			m.collections[collection][i] = updated
			return cloneRecord(updated), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.collections[collection]
	for i, rec := range recs {
		if rec.ID() == id {
			m.collections[collection] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func matches(rec Record, filter Filter) bool {
	for k, want := range filter {
		if rec[k] != want {
			return false
		}
	}
	return true
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
