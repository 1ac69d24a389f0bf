package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Hansade2005/shopsavvy/internal/api/middleware"
	"github.com/Hansade2005/shopsavvy/internal/identity"
	"github.com/Hansade2005/shopsavvy/internal/profile"
)

// AuthHandlers handles authentication and profile HTTP requests
type AuthHandlers struct {
	sessions *identity.SessionStore
	tokens   *identity.TokenService
	profiles *profile.Service
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(sessions *identity.SessionStore, tokens *identity.TokenService, profiles *profile.Service) *AuthHandlers {
	return &AuthHandlers{
		sessions: sessions,
		tokens:   tokens,
		profiles: profiles,
	}
}

// CredentialsRequest represents the login and registration request body
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message,omitempty"`
}

func userResponse(id identity.Identity) UserResponse {
	return UserResponse{
		ID:        id.ID,
		Email:     id.Email,
		Name:      id.Name,
		AvatarURL: id.AvatarURL,
	}
}

// Register handles user registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.sessions.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrMissingCredentials):
			respondJSONError(w, "Email and password are required", http.StatusBadRequest)
		case errors.Is(err, identity.ErrEmailInUse):
			respondJSONError(w, "Email already registered", http.StatusConflict)
		case errors.Is(err, identity.ErrBackendUnreachable):
			respondJSONError(w, "Authentication backend unavailable", http.StatusBadGateway)
		default:
			respondJSONError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.setSessionCookie(w, r, id, false)

	respondJSON(w, http.StatusCreated, AuthResponse{
		User:    userResponse(id),
		Message: "Registration successful",
	})
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrMissingCredentials):
			respondJSONError(w, "Email and password are required", http.StatusBadRequest)
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, identity.ErrBackendUnreachable):
			respondJSONError(w, "Authentication backend unavailable", http.StatusBadGateway)
		default:
			respondJSONError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.setSessionCookie(w, r, id, false)

	respondJSON(w, http.StatusOK, AuthResponse{
		User:    userResponse(id),
		Message: "Login successful",
	})
}

// Logout handles user logout. The local session is always cleared,
// even when the backend sign-out call fails.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.sessions.SignOut(r.Context())
	h.clearSessionCookie(w)

	if err != nil {
		respondJSON(w, http.StatusOK, map[string]string{
			"message": "Signed out locally; backend sign-out failed",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if id, signedIn := h.sessions.Current(); signedIn && id.ID == claims.UserID {
		respondJSON(w, http.StatusOK, userResponse(id))
		return
	}

	respondJSON(w, http.StatusOK, UserResponse{
		ID:    claims.UserID,
		Email: claims.Email,
	})
}

// Helper methods

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, id identity.Identity, admin bool) {
	setSessionCookie(w, r, h.tokens, id, admin)
}

func (h *AuthHandlers) clearSessionCookie(w http.ResponseWriter) {
	clearSessionCookie(w)
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, tokens *identity.TokenService, id identity.Identity, admin bool) {
	token, expiresAt, err := tokens.Generate(id, admin)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
