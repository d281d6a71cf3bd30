// Package http exposes the storefront's REST API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps service errors onto the wire. Field-level validation
// failures keep their per-field messages so clients can surface them inline.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: vErr.Fields(),
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	resp := errorResponse{Error: "an internal error occurred"}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
		resp.Code = appErr.Code
	}

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
		if resp.Code == "" {
			resp.Error = "an internal error occurred"
		}
	}

	respondJSON(w, status, resp)
}

// decode reads and validates a JSON request body. Malformed JSON is a 400,
// not a 500.
func decode(r *http.Request, dst any) error {
	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return nil
	}
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	return apperrors.InvalidInput("malformed request body")
}
