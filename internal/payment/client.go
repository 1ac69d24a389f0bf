package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrSessionCreation = errors.New("payment session creation failed")
	ErrUnreachable     = errors.New("payment gateway unreachable")
)

// Session is a hosted-checkout session created by the payment
// gateway. The storefront redirects the buyer to RedirectURL and
// never handles card data itself.
type Session struct {
	ID          string `json:"id"`
	RedirectURL string `json:"url"`
}

// Client is the narrow contract of the payment collaborator.
type Client interface {
	CreateCheckoutSession(ctx context.Context, orderID string) (Session, error)
}

// HTTPClient implements Client against the gateway's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) CreateCheckoutSession(ctx context.Context, orderID string) (Session, error) {
	payload, err := json.Marshal(map[string]string{"order_id": orderID})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Session{}, fmt.Errorf("%w: status %d", ErrSessionCreation, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}
	if session.ID == "" {
		return Session{}, fmt.Errorf("%w: empty session id", ErrSessionCreation)
	}
	return session, nil
}
