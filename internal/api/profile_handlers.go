package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Hansade2005/shopsavvy/internal/api/middleware"
	"github.com/Hansade2005/shopsavvy/internal/profile"
	"github.com/Hansade2005/shopsavvy/internal/records"
)

// Profile Handlers

// GetProfile returns the signed-in user's profile. A user who never
// saved one gets an empty profile, not an error.
func (h *AuthHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rec, err := h.profiles.Get(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("[API] Error fetching profile for %s: %v", claims.UserID, err)
		respondJSONError(w, "Failed to fetch profile", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// UpdateProfile upserts the signed-in user's profile. The user id
// always comes from the session claims, never the request body.
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var changes records.Record
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.profiles.Update(r.Context(), claims.UserID, changes)
	if err != nil {
		if errors.Is(err, profile.ErrNoEditableFields) {
			respondJSONError(w, "No editable profile fields provided", http.StatusBadRequest)
			return
		}
		log.Printf("[API] Error updating profile for %s: %v", claims.UserID, err)
		respondJSONError(w, "Failed to update profile", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}
