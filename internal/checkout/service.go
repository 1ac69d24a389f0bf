package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Hansade2005/shopsavvy/internal/cart"
	"github.com/Hansade2005/shopsavvy/internal/events"
	"github.com/Hansade2005/shopsavvy/internal/payment"
	"github.com/Hansade2005/shopsavvy/internal/records"
)

// AnonymousUser marks orders placed without a signed-in identity.
const AnonymousUser = "anonymous"

// Order statuses owned by the external system after creation. This
// service only ever creates orders as pending.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Result is a successfully finalized checkout: the buyer is sent to
// the payment gateway's hosted page.
type Result struct {
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// Service finalizes checkouts against the record store and the
// payment collaborator.
type Service struct {
	store     records.Store
	payments  payment.Client
	publisher events.Publisher
}

func NewService(store records.Store, payments payment.Client, publisher events.Publisher) *Service {
	return &Service{store: store, payments: payments, publisher: publisher}
}

// PlaceOrder persists the order built from the flow's accumulated
// state, then creates a payment session for it.
//
// Failure ordering: an order-creation failure aborts before the
// payment collaborator is ever contacted and leaves the wizard on the
// payment step so the buyer can retry without re-entering anything.
// A payment-session failure after the order exists is surfaced, but
// the order is left pending for the external system to reconcile;
// this client has no transactional authority to cancel it.
func (s *Service) PlaceOrder(ctx context.Context, flow *Flow, userID string) (Result, error) {
	if err := flow.readyToPlace(); err != nil {
		return Result{}, err
	}

	if userID == "" {
		userID = AnonymousUser
	}

	snapshot := flow.Snapshot()
	totals := flow.Totals()
	shipping := flow.Shipping()

	rec, err := s.store.Insert(ctx, records.CollectionOrders, records.Record{
		"user_id":        userID,
		"items":          orderItems(snapshot),
		"total":          totals.GrandTotal.String(),
		"status":         StatusPending,
		"payment_method": flow.PaymentMethod(),
		"shipping_address": map[string]any{
			"line1":       shipping.Line1,
			"city":        shipping.City,
			"state":       shipping.State,
			"postal_code": shipping.PostalCode,
			"country":     shipping.Country,
		},
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Result{}, fmt.Errorf("order creation failed: %w", err)
	}
	orderID := rec.ID()

	session, err := s.payments.CreateCheckoutSession(ctx, orderID)
	if err != nil {
		s.publish(orderID, events.TypePaymentSessionFailed, events.PaymentSessionFailed{
			OrderID:  orderID,
			Reason:   err.Error(),
			FailedAt: time.Now(),
		})
		return Result{}, fmt.Errorf("payment session for order %s: %w", orderID, err)
	}

	flow.markPlaced()

	s.publish(orderID, events.TypeOrderPlaced, events.OrderPlaced{
		OrderID:  orderID,
		UserID:   userID,
		Email:    flow.Contact().Email,
		Items:    eventItems(snapshot),
		Total:    totals.GrandTotal.String(),
		PlacedAt: time.Now(),
	})

	return Result{
		OrderID:     orderID,
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
	}, nil
}

// publish is best-effort: event delivery never fails a checkout.
func (s *Service) publish(key, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), key, eventType, data); err != nil {
		log.Printf("[Checkout] Failed to publish %s for %s: %v", eventType, key, err)
	}
}

func orderItems(lines []cart.Line) []map[string]any {
	items := make([]map[string]any, len(lines))
	for i, line := range lines {
		items[i] = map[string]any{
			"product_id": line.ProductID,
			"name":       line.Name,
			"price":      line.Price.String(),
			"quantity":   line.Quantity,
			"image_url":  line.ImageURL,
		}
	}
	return items
}

func eventItems(lines []cart.Line) []events.OrderItem {
	items := make([]events.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = events.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price.String(),
		}
	}
	return items
}
