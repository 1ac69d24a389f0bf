package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FallbackProvider is an in-memory stand-in for the hosted auth
// collaborator, used only when the hosted backend is unconfigured.
// Sign-in succeeds for any known email regardless of the secret:
// this is deliberately insecure and exists so the storefront stays
// usable in local development. State is never persisted and resets
// on every process restart.
type FallbackProvider struct {
	mu    sync.Mutex
	users []Identity
}

// NewFallbackProvider returns a provider seeded with the fixed set
// of test identities.
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{
		users: []Identity{
			{
				ID:        "test-user-1",
				Email:     "user1@example.com",
				Name:      "Test User1",
				AvatarURL: "https://i.pravatar.cc/150?img=1",
			},
			{
				ID:        "test-user-2",
				Email:     "user2@example.com",
				Name:      "Test User2",
				AvatarURL: "https://i.pravatar.cc/150?img=2",
			},
		},
	}
}

func (p *FallbackProvider) SignIn(_ context.Context, email, _ string) (Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, u := range p.users {
		if u.Email == email {
			return u, nil
		}
	}
	return Identity{}, ErrInvalidCredentials
}

func (p *FallbackProvider) SignUp(_ context.Context, email, _ string) (Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, u := range p.users {
		if u.Email == email {
			return Identity{}, ErrEmailInUse
		}
	}

	user := Identity{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      strings.SplitN(email, "@", 2)[0],
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", email),
	}
	p.users = append(p.users, user)
	return user, nil
}

func (p *FallbackProvider) SignOut(_ context.Context) error {
	// Nothing to invalidate; the session store owns the cached identity.
	return nil
}

func (p *FallbackProvider) Session(_ context.Context) (Identity, bool, error) {
	// The fallback backend keeps no session of its own.
	return Identity{}, false, nil
}
