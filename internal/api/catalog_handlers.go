package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Hansade2005/shopsavvy/internal/catalog"
)

// Catalog Handlers

// GetProducts returns the product listing, optionally filtered by
// category via the category_id query parameter.
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		log.Printf("[API] Error listing products: %v", err)
		respondJSONError(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GetProduct returns one product, including its average review rating.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/products/")
	id = strings.TrimSuffix(id, "/rating")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		log.Printf("[API] Error getting product %s: %v", id, err)
		respondJSONError(w, "Failed to fetch product", http.StatusInternalServerError)
		return
	}

	rating, err := h.catalog.AverageRating(r.Context(), id)
	if err != nil {
		log.Printf("[API] Error computing rating for %s: %v", id, err)
		rating = 0
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"product": product,
		"rating":  rating,
	})
}

// GetProductRating returns the average review rating for one product
func (h *Handlers) GetProductRating(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/products/")
	id = strings.TrimSuffix(id, "/rating")

	rating, err := h.catalog.AverageRating(r.Context(), id)
	if err != nil {
		log.Printf("[API] Error computing rating for %s: %v", id, err)
		respondJSONError(w, "Failed to compute rating", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]float64{"rating": rating})
}

// GetCategories returns all product categories
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		log.Printf("[API] Error listing categories: %v", err)
		respondJSONError(w, "Failed to fetch categories", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// SubscribeNewsletter records a newsletter signup
func (h *Handlers) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.catalog.SubscribeNewsletter(r.Context(), req.Email)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, map[string]string{"message": "Subscribed"})
	case errors.Is(err, catalog.ErrMissingEmail):
		respondJSONError(w, "Email is required", http.StatusBadRequest)
	case errors.Is(err, catalog.ErrAlreadySubscribed):
		respondJSONError(w, "Email already subscribed", http.StatusConflict)
	default:
		log.Printf("[API] Error subscribing %s: %v", req.Email, err)
		respondJSONError(w, "Failed to subscribe", http.StatusInternalServerError)
	}
}
