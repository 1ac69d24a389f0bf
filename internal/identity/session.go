package identity

import (
	"context"
	"log"
	"sync"
)

// SessionStore is the single source of truth for "who is logged in".
// It caches the current identity in memory and delegates credential
// operations to the provider chosen at construction time.
//
// Ordering contract: the cached identity is always updated before an
// operation returns, so a caller reading Current immediately after a
// successful sign-in, sign-up or sign-out never observes a stale
// value. Listeners are notified synchronously under the same rule.
type SessionStore struct {
	provider Provider

	mu        sync.RWMutex
	current   Identity
	signedIn  bool
	listeners []func(Identity, bool)
}

func NewSessionStore(provider Provider) *SessionStore {
	return &SessionStore{provider: provider}
}

// Resolve primes the cache from an existing backend session, if the
// provider has one. Errors are logged, not surfaced: a failed lookup
// simply leaves the store signed out.
func (s *SessionStore) Resolve(ctx context.Context) {
	id, ok, err := s.provider.Session(ctx)
	if err != nil {
		log.Printf("[Session] Failed to resolve existing session: %v", err)
		return
	}
	if ok {
		s.setCurrent(id, true)
	}
}

// Current returns the cached identity. It never blocks.
func (s *SessionStore) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.signedIn
}

func (s *SessionStore) SignIn(ctx context.Context, email, secret string) (Identity, error) {
	if email == "" || secret == "" {
		return Identity{}, ErrMissingCredentials
	}

	id, err := s.provider.SignIn(ctx, email, secret)
	if err != nil {
		return Identity{}, err
	}

	s.setCurrent(id, true)
	return id, nil
}

func (s *SessionStore) SignUp(ctx context.Context, email, secret string) (Identity, error) {
	if email == "" || secret == "" {
		return Identity{}, ErrMissingCredentials
	}

	id, err := s.provider.SignUp(ctx, email, secret)
	if err != nil {
		return Identity{}, err
	}

	s.setCurrent(id, true)
	return id, nil
}

// SignOut clears the cached identity unconditionally, then attempts
// the remote invalidation. Fail-open: a remote failure is returned to
// the caller but never leaves the store in a signed-in state.
func (s *SessionStore) SignOut(ctx context.Context) error {
	s.setCurrent(Identity{}, false)

	if err := s.provider.SignOut(ctx); err != nil {
		log.Printf("[Session] Remote sign-out failed (local session already cleared): %v", err)
		return err
	}
	return nil
}

// Subscribe registers a listener invoked on every identity change.
// Listeners run synchronously, after the cache update and before the
// triggering operation returns.
func (s *SessionStore) Subscribe(fn func(Identity, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *SessionStore) setCurrent(id Identity, signedIn bool) {
	s.mu.Lock()
	s.current = id
	s.signedIn = signedIn
	listeners := make([]func(Identity, bool), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(id, signedIn)
	}
}
