package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope_RoundTrip(t *testing.T) {
	placed := OrderPlaced{
		OrderID: "order-1",
		UserID:  "user-1",
		Email:   "buyer@example.com",
		Items: []OrderItem{
			{ProductID: "p1", Name: "Wireless Headphones", Quantity: 2, Price: "199.99"},
		},
		Total:    "409.97",
		PlacedAt: time.Now(),
	}
	wire, err := json.Marshal(Envelope{
		EventType:  TypeOrderPlaced,
		OccurredAt: time.Now(),
		Data:       placed,
	})
	require.NoError(t, err)

	eventType, data, err := DecodeEnvelope(wire)
	require.NoError(t, err)
	assert.Equal(t, TypeOrderPlaced, eventType)

	var decoded OrderPlaced
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, placed.OrderID, decoded.OrderID)
	assert.Equal(t, placed.Items, decoded.Items)
	assert.Equal(t, placed.Total, decoded.Total)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	_, _, err := DecodeEnvelope([]byte("not json"))
	assert.Error(t, err)
}
