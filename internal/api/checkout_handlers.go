package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Hansade2005/shopsavvy/internal/api/middleware"
	"github.com/Hansade2005/shopsavvy/internal/cart"
	"github.com/Hansade2005/shopsavvy/internal/checkout"
)

// checkoutView is the JSON shape returned for every wizard read and
// mutation: the current step plus everything entered so far.
type checkoutView struct {
	Step          checkout.Step    `json:"step"`
	Items         []cart.Line      `json:"items"`
	Totals        cart.Totals      `json:"totals"`
	Contact       checkout.Contact `json:"contact"`
	Shipping      checkout.Address `json:"shipping"`
	PaymentMethod string           `json:"payment_method,omitempty"`
}

func flowView(f *checkout.Flow) checkoutView {
	return checkoutView{
		Step:          f.Step(),
		Items:         f.Snapshot(),
		Totals:        f.Totals(),
		Contact:       f.Contact(),
		Shipping:      f.Shipping(),
		PaymentMethod: f.PaymentMethod(),
	}
}

// Checkout Handlers

// BeginCheckout starts a checkout over a snapshot of the owner's
// current cart. Restarting replaces any in-flight wizard.
func (h *Handlers) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	c := h.carts.Get(owner)
	if c.Totals().ItemCount == 0 {
		respondJSONError(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	flow := h.checkouts.Begin(owner, c)
	respondJSON(w, http.StatusCreated, flowView(flow))
}

// GetCheckout returns the in-flight wizard state
func (h *Handlers) GetCheckout(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.checkouts.Get(ownerID(r))
	if !ok {
		respondJSONError(w, "No checkout in progress", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, flowView(flow))
}

// AbandonCheckout discards the in-flight wizard. The cart is untouched.
func (h *Handlers) AbandonCheckout(w http.ResponseWriter, r *http.Request) {
	h.checkouts.End(ownerID(r))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Checkout abandoned"})
}

// SetContact stores the contact step's form data
func (h *Handlers) SetContact(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.checkouts.Get(ownerID(r))
	if !ok {
		respondJSONError(w, "No checkout in progress", http.StatusNotFound)
		return
	}

	var contact checkout.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	flow.SetContact(contact)
	respondJSON(w, http.StatusOK, flowView(flow))
}

// SetShipping stores the shipping step's form data
func (h *Handlers) SetShipping(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.checkouts.Get(ownerID(r))
	if !ok {
		respondJSONError(w, "No checkout in progress", http.StatusNotFound)
		return
	}

	var addr checkout.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	flow.SetShipping(addr)
	respondJSON(w, http.StatusOK, flowView(flow))
}

// SetPaymentMethod stores the chosen payment method
func (h *Handlers) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.checkouts.Get(ownerID(r))
	if !ok {
		respondJSONError(w, "No checkout in progress", http.StatusNotFound)
		return
	}

	var req struct {
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := flow.SetPaymentMethod(req.Method); err != nil {
		respondJSONError(w, "Unknown payment method", http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, flowView(flow))
}

// NextStep advances the wizard after validating the current step
func (h *Handlers) NextStep(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.checkouts.Get(ownerID(r))
	if !ok {
		respondJSONError(w, "No checkout in progress", http.StatusNotFound)
		return
	}

	if err := flow.Next(); err != nil {
		middleware.RecordCheckoutOperation("next", false)
		respondJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	middleware.RecordCheckoutOperation("next", true)
	respondJSON(w, http.StatusOK, flowView(flow))
}

// PrevStep moves the wizard back one step, preserving everything
// already entered.
func (h *Handlers) PrevStep(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.checkouts.Get(ownerID(r))
	if !ok {
		respondJSONError(w, "No checkout in progress", http.StatusNotFound)
		return
	}

	if err := flow.Back(); err != nil {
		respondJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	respondJSON(w, http.StatusOK, flowView(flow))
}

// PlaceOrder finalizes the checkout: the order is persisted, a payment
// session is created, and the buyer is handed the gateway redirect.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	flow, ok := h.checkouts.Get(owner)
	if !ok {
		respondJSONError(w, "No checkout in progress", http.StatusNotFound)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		userID = checkout.AnonymousUser
	}

	result, err := h.orders.PlaceOrder(r.Context(), flow, userID)
	if err != nil {
		middleware.RecordCheckoutOperation("place", false)
		switch {
		case errors.Is(err, checkout.ErrNotReady), errors.Is(err, checkout.ErrMissingFields):
			respondJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, checkout.ErrAlreadyPlaced):
			respondJSONError(w, "Order already placed", http.StatusConflict)
		default:
			log.Printf("[API] Error placing order for %s: %v", owner, err)
			respondJSONError(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	middleware.RecordCheckoutOperation("place", true)

	// The purchase is done: drop the wizard and start the cart fresh.
	h.checkouts.End(owner)
	h.carts.Get(owner).Clear()

	respondJSON(w, http.StatusCreated, result)
}
