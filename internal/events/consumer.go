package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// EventHandler processes one decoded event: its type and raw payload.
type EventHandler func(ctx context.Context, eventType string, data json.RawMessage) error

// Consumer reads storefront event envelopes from Kafka and dispatches
// their decoded payloads, e.g. to the order notification worker.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Consume reads envelopes until the context is cancelled. Messages
// that are not valid envelopes are logged and skipped; handler errors
// are logged and never stop the loop.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Events] Error reading message: %v", err)
				continue
			}

			eventType, data, err := DecodeEnvelope(msg.Value)
			if err != nil {
				log.Printf("[Events] Skipping malformed envelope (key %s): %v", msg.Key, err)
				continue
			}

			if err := handler(ctx, eventType, data); err != nil {
				log.Printf("[Events] Error handling %s: %v", eventType, err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
