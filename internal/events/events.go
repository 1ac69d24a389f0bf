package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeOrderPlaced          = "OrderPlaced"
	TypePaymentSessionFailed = "PaymentSessionFailed"
)

// OrderItem is one line of a placed order as carried on the wire.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderPlaced is published after an order has been persisted and a
// payment session created.
type OrderPlaced struct {
	OrderID  string      `json:"order_id"`
	UserID   string      `json:"user_id"`
	Email    string      `json:"email,omitempty"`
	Items    []OrderItem `json:"items"`
	Total    string      `json:"total"`
	PlacedAt time.Time   `json:"placed_at"`
}

// PaymentSessionFailed is published when the payment collaborator
// rejected the session for an already-created order. Downstream
// consumers use it to reconcile orders stuck in pending.
type PaymentSessionFailed struct {
	OrderID  string    `json:"order_id"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// Envelope wraps every published event with its type so consumers
// can dispatch without trial decoding.
type Envelope struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// DecodeEnvelope splits a wire message into its event type and raw
// payload for dispatch.
func DecodeEnvelope(value []byte) (string, json.RawMessage, error) {
	var env struct {
		EventType string          `json:"event_type"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(value, &env); err != nil {
		return "", nil, fmt.Errorf("decode event envelope: %w", err)
	}
	return env.EventType, env.Data, nil
}
