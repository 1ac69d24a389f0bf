package cart

import "sync"

// Manager hands out exactly one Store per owner so that every
// surface operating on a cart shares the same instance.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	storage Storage
	pricing Pricing
}

func NewManager(storage Storage, pricing Pricing) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		storage: storage,
		pricing: pricing,
	}
}

// Get returns the owner's cart store, creating and loading it on
// first use.
func (m *Manager) Get(ownerID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[ownerID]; ok {
		return store
	}
	store := NewStore(m.storage, cartKey(ownerID), m.pricing)
	m.stores[ownerID] = store
	return store
}

func cartKey(ownerID string) string {
	return "cart:" + ownerID
}
