package checkout

import (
	"sync"

	"github.com/Hansade2005/shopsavvy/internal/cart"
)

// Manager tracks the single in-flight checkout per owner. A flow is
// created when checkout begins and destroyed on successful placement
// or when the owner abandons it.
type Manager struct {
	mu    sync.Mutex
	flows map[string]*Flow
}

func NewManager() *Manager {
	return &Manager{flows: make(map[string]*Flow)}
}

// Begin starts a new checkout over the owner's cart, replacing any
// abandoned flow.
func (m *Manager) Begin(ownerID string, c *cart.Store) *Flow {
	flow := NewFlow(c)
	m.mu.Lock()
	m.flows[ownerID] = flow
	m.mu.Unlock()
	return flow
}

// Get returns the owner's in-flight checkout, if any.
func (m *Manager) Get(ownerID string) (*Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flow, ok := m.flows[ownerID]
	return flow, ok
}

// End discards the owner's flow.
func (m *Manager) End(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flows, ownerID)
}
