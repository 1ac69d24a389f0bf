package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Hansade2005/shopsavvy/internal/api/middleware"
	"github.com/Hansade2005/shopsavvy/internal/cart"
	"github.com/Hansade2005/shopsavvy/internal/catalog"
	"github.com/Hansade2005/shopsavvy/internal/checkout"
)

type Handlers struct {
	carts     *cart.Manager
	catalog   *catalog.Service
	checkouts *checkout.Manager
	orders    *checkout.Service
}

func NewHandlers(carts *cart.Manager, catalogSvc *catalog.Service, checkouts *checkout.Manager, orders *checkout.Service) *Handlers {
	return &Handlers{
		carts:     carts,
		catalog:   catalogSvc,
		checkouts: checkouts,
		orders:    orders,
	}
}

// cartView is the JSON shape returned for every cart read and mutation.
type cartView struct {
	Items  []cart.Line `json:"items"`
	Totals cart.Totals `json:"totals"`
}

func viewOf(c *cart.Store) cartView {
	return cartView{Items: c.Lines(), Totals: c.Totals()}
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Get(ownerID(r))
	respondJSON(w, http.StatusOK, viewOf(c))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		respondJSONError(w, "product_id is required", http.StatusBadRequest)
		return
	}

	rec, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		log.Printf("[API] Error fetching product %s: %v", req.ProductID, err)
		respondJSONError(w, "Failed to fetch product", http.StatusBadGateway)
		return
	}

	c := h.carts.Get(ownerID(r))
	c.AddItem(cart.Product{
		ID:       rec.ID(),
		Name:     fieldString(rec, "name"),
		Price:    fieldDecimal(rec, "price"),
		ImageURL: fieldString(rec, "image_url"),
	})

	respondJSON(w, http.StatusOK, viewOf(c))
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/api/cart/items/")
	if productID == "" {
		respondJSONError(w, "product id missing", http.StatusBadRequest)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c := h.carts.Get(ownerID(r))
	c.SetQuantity(productID, req.Quantity)
	respondJSON(w, http.StatusOK, viewOf(c))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/api/cart/items/")
	if productID == "" {
		respondJSONError(w, "product id missing", http.StatusBadRequest)
		return
	}

	c := h.carts.Get(ownerID(r))
	c.RemoveItem(productID)
	respondJSON(w, http.StatusOK, viewOf(c))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Get(ownerID(r))
	c.Clear()
	respondJSON(w, http.StatusOK, viewOf(c))
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// ownerID resolves whose cart and checkout a request acts on: the
// signed-in user when a valid session token is present, otherwise the
// caller-supplied guest cart ID.
func ownerID(r *http.Request) string {
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		return userID
	}

	if guestID := r.Header.Get("X-Cart-ID"); guestID != "" {
		return "guest:" + guestID
	}

	return checkout.AnonymousUser
}

func fieldString(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}

func fieldDecimal(rec map[string]any, key string) decimal.Decimal {
	switch v := rec[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	}
	return decimal.Zero
}
