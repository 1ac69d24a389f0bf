package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Email != "known@example.com" || req.Password != "correct" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-abc",
			"user": map[string]any{
				"id":    "hosted-user-1",
				"email": req.Email,
				"user_metadata": map[string]any{
					"name": "Known User",
				},
			},
		})
	})

	mux.HandleFunc("/auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Email == "known@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-new",
			"user": map[string]any{
				"id":    "hosted-user-2",
				"email": req.Email,
			},
		})
	})

	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "hosted-user-1",
			"email": "known@example.com",
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestHostedProvider_SignIn_Success(t *testing.T) {
	server := newAuthTestServer(t)
	provider := NewHostedProvider(server.URL, "anon-key")

	id, err := provider.SignIn(context.Background(), "known@example.com", "correct")

	require.NoError(t, err)
	assert.Equal(t, "hosted-user-1", id.ID)
	assert.Equal(t, "Known User", id.Name)
}

func TestHostedProvider_SignIn_InvalidCredentials(t *testing.T) {
	server := newAuthTestServer(t)
	provider := NewHostedProvider(server.URL, "anon-key")

	_, err := provider.SignIn(context.Background(), "known@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHostedProvider_SignUp_DuplicateEmail(t *testing.T) {
	server := newAuthTestServer(t)
	provider := NewHostedProvider(server.URL, "anon-key")

	_, err := provider.SignUp(context.Background(), "known@example.com", "secret")

	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestHostedProvider_SessionRoundTrip(t *testing.T) {
	server := newAuthTestServer(t)
	provider := NewHostedProvider(server.URL, "anon-key")
	ctx := context.Background()

	// No session before sign-in.
	_, ok, err := provider.Session(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = provider.SignIn(ctx, "known@example.com", "correct")
	require.NoError(t, err)

	id, ok, err := provider.Session(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hosted-user-1", id.ID)

	require.NoError(t, provider.SignOut(ctx))

	_, ok, err = provider.Session(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHostedProvider_Unreachable(t *testing.T) {
	provider := NewHostedProvider("http://127.0.0.1:1", "anon-key")

	_, err := provider.SignIn(context.Background(), "a@b.com", "x")

	assert.ErrorIs(t, err, ErrBackendUnreachable)
}
