package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := NotFound("product", "42")
	assert.Contains(t, e.Error(), "NOT_FOUND")
	assert.Contains(t, e.Error(), "product with id 42 not found")

	plain := &AppError{Code: "X", Message: "y"}
	assert.Equal(t, "X: y", plain.Error())
}

func TestConstructors_SentinelUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"not found", NotFound("cart", "s1"), ErrNotFound, http.StatusNotFound},
		{"invalid input", InvalidInput("bad quantity"), ErrInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("bad credentials"), ErrUnauthorized, http.StatusUnauthorized},
		{"busy", Busy("checkout in progress"), ErrBusy, http.StatusConflict},
		{"corrupt", CorruptState("cartItems:s1", errors.New("bad json")), ErrCorruptState, http.StatusInternalServerError},
		{"upstream", Upstream("products", errors.New("dial refused")), ErrUpstream, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	err := fmt.Errorf("load cart: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))

	err = fmt.Errorf("quote: %w", ErrBusy)
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestWrap(t *testing.T) {
	base := errors.New("root cause")
	wrapped := Wrap(base, "while saving")
	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "while saving")
}
