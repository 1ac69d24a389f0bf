package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider lets tests control provider outcomes.
type stubProvider struct {
	signInIdentity Identity
	signInErr      error
	signOutErr     error
	sessionID      Identity
	sessionOK      bool
}

func (p *stubProvider) SignIn(_ context.Context, _, _ string) (Identity, error) {
	return p.signInIdentity, p.signInErr
}

func (p *stubProvider) SignUp(_ context.Context, email, _ string) (Identity, error) {
	return Identity{ID: "new-id", Email: email}, nil
}

func (p *stubProvider) SignOut(_ context.Context) error {
	return p.signOutErr
}

func (p *stubProvider) Session(_ context.Context) (Identity, bool, error) {
	return p.sessionID, p.sessionOK, nil
}

func TestSessionStore_SignIn_UpdatesCurrent(t *testing.T) {
	provider := &stubProvider{signInIdentity: Identity{ID: "u1", Email: "a@b.com"}}
	store := NewSessionStore(provider)

	id, err := store.SignIn(context.Background(), "a@b.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)

	current, ok := store.Current()
	assert.True(t, ok)
	assert.Equal(t, "u1", current.ID)
}

func TestSessionStore_SignIn_MissingCredentials(t *testing.T) {
	store := NewSessionStore(&stubProvider{})

	tests := []struct {
		name   string
		email  string
		secret string
	}{
		{"empty email", "", "secret"},
		{"empty secret", "a@b.com", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SignIn(context.Background(), tt.email, tt.secret)
			assert.ErrorIs(t, err, ErrMissingCredentials)
		})
	}
}

func TestSessionStore_SignIn_FailureLeavesSignedOut(t *testing.T) {
	provider := &stubProvider{signInErr: ErrInvalidCredentials}
	store := NewSessionStore(provider)

	_, err := store.SignIn(context.Background(), "a@b.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestSessionStore_SignOut_FailOpen(t *testing.T) {
	provider := &stubProvider{
		signInIdentity: Identity{ID: "u1", Email: "a@b.com"},
		signOutErr:     errors.New("network down"),
	}
	store := NewSessionStore(provider)

	_, err := store.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	// Remote sign-out fails, but the local session must be cleared.
	err = store.SignOut(context.Background())
	assert.Error(t, err)

	_, ok := store.Current()
	assert.False(t, ok)
}

func TestSessionStore_Subscribe_NotifiedBeforeReturn(t *testing.T) {
	provider := &stubProvider{signInIdentity: Identity{ID: "u1", Email: "a@b.com"}}
	store := NewSessionStore(provider)

	var seen []bool
	store.Subscribe(func(_ Identity, signedIn bool) {
		seen = append(seen, signedIn)
		// The cache is already updated when the listener runs.
		_, ok := store.Current()
		assert.Equal(t, signedIn, ok)
	})

	_, err := store.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	require.NoError(t, store.SignOut(context.Background()))

	assert.Equal(t, []bool{true, false}, seen)
}

func TestSessionStore_Resolve_PrimesFromBackendSession(t *testing.T) {
	provider := &stubProvider{sessionID: Identity{ID: "u9"}, sessionOK: true}
	store := NewSessionStore(provider)

	store.Resolve(context.Background())

	current, ok := store.Current()
	assert.True(t, ok)
	assert.Equal(t, "u9", current.ID)
}
