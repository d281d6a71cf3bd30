package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// User is the account profile returned by the auth backend.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Session is an authenticated session: a bearer token plus the user it
// belongs to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthClient talks to the upstream auth backend. The storefront never
// stores credentials; it only relays them.
type AuthClient struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewAuthClient builds a client rooted at baseURL (no trailing slash).
func NewAuthClient(baseURL string, hc *httpclient.CircuitBreakerClient, logger *slog.Logger) *AuthClient {
	return &AuthClient{baseURL: baseURL, http: hc, logger: logger}
}

// Login exchanges credentials for a session. Rejected credentials come back
// as ErrUnauthorized; transport and server failures as ErrUpstream.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Upstream("auth", err)
	}
	defer resp.Body.Close()

	return c.decodeSession(resp)
}

// Register creates an account and returns the session the backend issues
// for it.
func (c *AuthClient) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Upstream("auth", err)
	}
	defer resp.Body.Close()

	return c.decodeSession(resp)
}

func (c *AuthClient) decodeSession(resp *http.Response) (*Session, error) {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusBadRequest, http.StatusConflict:
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		msg := "invalid credentials"
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			if payload.Message != "" {
				msg = payload.Message
			} else if payload.Error != "" {
				msg = payload.Error
			}
		}
		return nil, apperrors.Unauthorized(msg)
	default:
		return nil, apperrors.Upstream("auth", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperrors.Upstream("auth", fmt.Errorf("decoding response: %w", err))
	}
	if session.Token == "" {
		return nil, apperrors.Upstream("auth", fmt.Errorf("response missing token"))
	}
	return &session, nil
}
