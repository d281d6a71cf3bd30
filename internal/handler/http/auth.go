package http

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/internal/client"
)

// AuthBackend is the slice of the auth client the handler needs.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*client.Session, error)
	Register(ctx context.Context, in client.RegisterInput) (*client.Session, error)
}

// AuthHandler relays credentials to the auth backend.
type AuthHandler struct {
	auth AuthBackend
}

// NewAuthHandler builds the auth handler.
func NewAuthHandler(auth AuthBackend) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// Register handles POST /auth/register. The backend issues a session with
// the new account, so registration doubles as login.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.auth.Register(r.Context(), client.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}
