package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// HostedProvider talks to a GoTrue-style hosted auth API. Only the
// narrow surface the storefront needs is implemented: password
// sign-in, sign-up, sign-out and session lookup. The token returned
// by the backend is held for the lifetime of the provider so that
// sign-out and session lookup can reference it.
type HostedProvider struct {
	baseURL string
	anonKey string
	client  *http.Client

	mu          sync.Mutex
	accessToken string
}

func NewHostedProvider(baseURL, anonKey string) *HostedProvider {
	return &HostedProvider{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// hostedUser mirrors the user object of the hosted API; metadata
// carries the optional display fields.
type hostedUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

type sessionResponse struct {
	AccessToken string     `json:"access_token"`
	User        hostedUser `json:"user"`
}

func (u hostedUser) toIdentity() Identity {
	return Identity{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Metadata.Name,
		AvatarURL: u.Metadata.AvatarURL,
	}
}

func (p *HostedProvider) SignIn(ctx context.Context, email, secret string) (Identity, error) {
	var resp sessionResponse
	err := p.post(ctx, "/auth/v1/token?grant_type=password", credentialsRequest{Email: email, Password: secret}, &resp)
	if err != nil {
		return Identity{}, err
	}

	p.mu.Lock()
	p.accessToken = resp.AccessToken
	p.mu.Unlock()

	return resp.User.toIdentity(), nil
}

func (p *HostedProvider) SignUp(ctx context.Context, email, secret string) (Identity, error) {
	var resp sessionResponse
	err := p.post(ctx, "/auth/v1/signup", credentialsRequest{Email: email, Password: secret}, &resp)
	if err != nil {
		return Identity{}, err
	}

	p.mu.Lock()
	p.accessToken = resp.AccessToken
	p.mu.Unlock()

	return resp.User.toIdentity(), nil
}

func (p *HostedProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.accessToken
	p.accessToken = ""
	p.mu.Unlock()

	if token == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	p.setHeaders(req, token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sign out failed: status %d", resp.StatusCode)
	}
	return nil
}

func (p *HostedProvider) Session(ctx context.Context) (Identity, bool, error) {
	p.mu.Lock()
	token := p.accessToken
	p.mu.Unlock()

	if token == "" {
		return Identity{}, false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return Identity{}, false, err
	}
	p.setHeaders(req, token)

	resp, err := p.client.Do(req)
	if err != nil {
		return Identity{}, false, fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Identity{}, false, nil
	}
	if resp.StatusCode >= 300 {
		return Identity{}, false, fmt.Errorf("session lookup failed: status %d", resp.StatusCode)
	}

	var user hostedUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Identity{}, false, err
	}
	return user.toIdentity(), true, nil
}

func (p *HostedProvider) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	p.setHeaders(req, "")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusConflict:
		return ErrEmailInUse
	case resp.StatusCode >= 300:
		return fmt.Errorf("auth request failed: status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *HostedProvider) setHeaders(req *http.Request, token string) {
	req.Header.Set("apikey", p.anonKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
