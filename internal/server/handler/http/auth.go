// Package http provides HTTP handlers for user authentication, settings
// and account management.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/chalkboard/internal/middleware"
	"github.com/avolkov/chalkboard/internal/models"
	"github.com/avolkov/chalkboard/internal/repository"
	"github.com/avolkov/chalkboard/internal/service"
)

// AuthService defines the interface for authentication operations required
// by the HTTP handlers.
type AuthService interface {
	// Register creates a new account and returns the user and a session token.
	Register(ctx context.Context, email, password string, encryptionSalt, keyVerifier []byte) (*models.User, string, error)
	// Login verifies credentials and returns the user and a session token.
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	// SaveSettings persists the user's display preferences.
	SaveSettings(ctx context.Context, email string, settings models.Settings) error
	// DeleteAccount removes the identity and all of its notes.
	DeleteAccount(ctx context.Context, email string) error
}

// AuthHandler handles HTTP requests for registration, login, settings and
// account deletion.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// CredentialsRequest represents the JSON payload for registration and login.
// EncryptionSalt and KeyVerifier are only meaningful at registration, when
// the client sets up its encryption envelope.
type CredentialsRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	EncryptionSalt []byte `json:"encryptionSalt,omitempty"`
	KeyVerifier    []byte `json:"keyVerifier,omitempty"`
}

// SessionResponse is returned by Register and Login: a bearer token plus the
// profile the client needs to unlock its envelope.
type SessionResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

// Register handles POST /api/register.
// It expects a JSON body with non-empty email and password, and optionally
// the envelope salt and verifier. Responds 201 with a session token, or 409
// when the email is taken.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req.Email, req.Password, req.EncryptionSalt, req.KeyVerifier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			http.Error(w, "user already exists", http.StatusConflict)
		case errors.Is(err, service.ErrInvalidCredentials):
			http.Error(w, "invalid request", http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(SessionResponse{Token: token, Profile: user.Profile()})
}

// Login handles POST /api/login.
// On success it returns a session token and the profile, including the
// envelope salt and verifier when the account is encrypted.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(SessionResponse{Token: token, Profile: user.Profile()})
}

// SaveSettings handles PUT /api/settings for the authenticated identity.
func (h *AuthHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())

	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.AuthService.SaveSettings(r.Context(), author, settings); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount handles DELETE /api/account: the identity and every note it
// owns are removed in one transaction.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())

	if err := h.AuthService.DeleteAccount(r.Context(), author); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
