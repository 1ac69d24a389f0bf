package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Hansade2005/shopsavvy/internal/admin"
	"github.com/Hansade2005/shopsavvy/internal/api/middleware"
	"github.com/Hansade2005/shopsavvy/internal/identity"
	"github.com/Hansade2005/shopsavvy/internal/records"
)

// AdminHandlers handles the admin panel's HTTP requests
type AdminHandlers struct {
	guard    *admin.Guard
	panels   map[string]*admin.Panel
	sessions *identity.SessionStore
	tokens   *identity.TokenService
}

// NewAdminHandlers creates a new AdminHandlers instance. One panel is
// managed per editable collection.
func NewAdminHandlers(guard *admin.Guard, store records.Store, sessions *identity.SessionStore, tokens *identity.TokenService) *AdminHandlers {
	panels := map[string]*admin.Panel{
		records.CollectionProducts:   admin.NewPanel(store, records.CollectionProducts),
		records.CollectionCategories: admin.NewPanel(store, records.CollectionCategories),
		records.CollectionOrders:     admin.NewPanel(store, records.CollectionOrders),
	}
	return &AdminHandlers{
		guard:    guard,
		panels:   panels,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Login checks the admin credentials and, on success, marks the owner
// as admin and reissues the session cookie with the admin flag set.
func (h *AdminHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	owner := ownerID(r)
	if err := h.guard.SignIn(owner, req.Email, req.Password); err != nil {
		respondJSONError(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id, signedIn := h.sessions.Current()
	if !signedIn {
		id = identity.Identity{ID: owner, Email: req.Email}
	}
	setSessionCookie(w, r, h.tokens, id, true)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Admin access granted"})
}

// Logout drops the owner's admin flag and reverts the session cookie
func (h *AdminHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	h.guard.SignOut(owner)

	if id, signedIn := h.sessions.Current(); signedIn {
		setSessionCookie(w, r, h.tokens, id, false)
	} else {
		clearSessionCookie(w)
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Admin access revoked"})
}

// ListRecords returns the mirrored view of one collection
func (h *AdminHandlers) ListRecords(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(r)
	if !ok {
		respondJSONError(w, "Unknown collection", http.StatusNotFound)
		return
	}

	recs, err := panel.List(r.Context())
	if err != nil {
		log.Printf("[Admin] Error listing records: %v", err)
		respondJSONError(w, "Failed to fetch records", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, recs)
}

// CreateRecord inserts a record through the panel
func (h *AdminHandlers) CreateRecord(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(r)
	if !ok {
		respondJSONError(w, "Unknown collection", http.StatusNotFound)
		return
	}

	var rec records.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := panel.Create(r.Context(), rec)
	if err != nil {
		log.Printf("[Admin] Error creating record: %v", err)
		respondJSONError(w, "Failed to create record", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// UpdateRecord applies field changes to one record
func (h *AdminHandlers) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(r)
	if !ok {
		respondJSONError(w, "Unknown collection", http.StatusNotFound)
		return
	}

	id := h.recordID(r)
	if id == "" {
		respondJSONError(w, "record id missing", http.StatusBadRequest)
		return
	}

	var changes records.Record
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := panel.Update(r.Context(), id, changes)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			respondJSONError(w, "Record not found", http.StatusNotFound)
			return
		}
		log.Printf("[Admin] Error updating record %s: %v", id, err)
		respondJSONError(w, "Failed to update record", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteRecord removes one record. Deletion must be confirmed with
// the confirm=true query parameter before anything is touched.
func (h *AdminHandlers) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(r)
	if !ok {
		respondJSONError(w, "Unknown collection", http.StatusNotFound)
		return
	}

	id := h.recordID(r)
	if id == "" {
		respondJSONError(w, "record id missing", http.StatusBadRequest)
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	err := panel.Delete(r.Context(), id, confirmed)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]string{"message": "Record deleted"})
	case errors.Is(err, admin.ErrConfirmationRequired):
		respondJSONError(w, "Deletion requires confirmation", http.StatusPreconditionRequired)
	case errors.Is(err, records.ErrNotFound):
		respondJSONError(w, "Record not found", http.StatusNotFound)
	default:
		log.Printf("[Admin] Error deleting record %s: %v", id, err)
		respondJSONError(w, "Failed to delete record", http.StatusBadGateway)
	}
}

// IsAdmin reports whether the current owner holds the admin flag. The
// session claims are authoritative for routing; the stored flag is
// exposed for UI state.
func (h *AdminHandlers) IsAdmin(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	isAdmin := (ok && claims.Admin) || h.guard.IsAdmin(ownerID(r))
	respondJSON(w, http.StatusOK, map[string]bool{"is_admin": isAdmin})
}

func (h *AdminHandlers) panel(r *http.Request) (*admin.Panel, bool) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/records/")
	collection := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		collection = rest[:i]
	}
	panel, ok := h.panels[collection]
	return panel, ok
}

func (h *AdminHandlers) recordID(r *http.Request) string {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/records/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i+1:]
	}
	return ""
}
