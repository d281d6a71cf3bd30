package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

const sessionHeader = "X-Session-ID"

type sessionCtxKey struct{}

// SessionID returns the session identity attached to the request context,
// or the empty string outside the session middleware.
func SessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// Session resolves the caller's identity. A valid bearer token binds the
// cart to the account; otherwise the session header identifies an anonymous
// visitor. First-time visitors get a generated id echoed back in the
// response header.
func Session(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := resolveSession(r, jwtSecret)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			w.Header().Set(sessionHeader, sessionID)

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionID)
			ctx = logger.WithSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveSession(r *http.Request, jwtSecret string) (string, error) {
	if auth := r.Header.Get("Authorization"); auth != "" && jwtSecret != "" {
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return "", apperrors.Unauthorized("authorization header must be a bearer token")
		}
		userID, err := userIDFromToken(raw, jwtSecret)
		if err != nil {
			return "", apperrors.Unauthorized("invalid or expired token")
		}
		return "user:" + userID, nil
	}

	id := strings.TrimSpace(r.Header.Get(sessionHeader))
	if len(id) > 128 {
		return "", apperrors.InvalidInput("session id too long")
	}
	return id, nil
}

func userIDFromToken(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id, nil
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}
