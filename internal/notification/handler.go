package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/Hansade2005/shopsavvy/internal/email"
	"github.com/Hansade2005/shopsavvy/internal/events"
	"github.com/Hansade2005/shopsavvy/internal/records"
)

// Handler processes order events for sending notifications
type Handler struct {
	emailService *email.Service
	store        records.Store
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc *email.Service, store records.Store) *Handler {
	return &Handler{
		emailService: emailSvc,
		store:        store,
	}
}

// HandleEvent processes one decoded event from the consumer
func (h *Handler) HandleEvent(ctx context.Context, eventType string, data json.RawMessage) error {
	switch eventType {
	case events.TypeOrderPlaced:
		return h.handleOrderPlaced(ctx, data)
	case events.TypePaymentSessionFailed:
		return h.handlePaymentSessionFailed(data)
	}

	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, data json.RawMessage) error {
	var e events.OrderPlaced
	if err := json.Unmarshal(data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing OrderPlaced event for order %s, user %s", e.OrderID, e.UserID)

	to := e.Email
	if to == "" {
		to = h.lookupEmail(ctx, e.UserID)
	}
	if to == "" {
		log.Printf("[Notifier] No email address for user %s, skipping order %s", e.UserID, e.OrderID)
		return nil
	}

	emailItems := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		name := item.Name
		if name == "" {
			name = h.lookupProductName(ctx, item.ProductID)
		}
		emailItems[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := h.emailService.SendOrderConfirmation(to, e.OrderID, e.Total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", to, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", to, e.OrderID)
	return nil
}

func (h *Handler) handlePaymentSessionFailed(data json.RawMessage) error {
	var e events.PaymentSessionFailed
	if err := json.Unmarshal(data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal PaymentSessionFailed event: %v", err)
		return err
	}
	log.Printf("[Notifier] Payment session failed for order %s: %s", e.OrderID, e.Reason)
	return nil
}

func (h *Handler) lookupEmail(ctx context.Context, userID string) string {
	if h.store == nil || userID == "" {
		return ""
	}
	recs, err := h.store.Select(ctx, records.CollectionProfiles, records.Filter{"id": userID})
	if err != nil || len(recs) == 0 {
		return ""
	}
	if s, ok := recs[0]["email"].(string); ok {
		return s
	}
	return ""
}

func (h *Handler) lookupProductName(ctx context.Context, productID string) string {
	if h.store == nil {
		return productID
	}
	recs, err := h.store.Select(ctx, records.CollectionProducts, records.Filter{"id": productID})
	if err != nil || len(recs) == 0 {
		return productID
	}
	if s, ok := recs[0]["name"].(string); ok && s != "" {
		return s
	}
	return productID
}
