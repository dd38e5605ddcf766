package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/voyagen/tubestats/internal/engine"
	"github.com/voyagen/tubestats/internal/loader"
	"github.com/voyagen/tubestats/internal/service"
	"github.com/voyagen/tubestats/internal/validation"
)

// APIError is the standard error envelope for all error responses.
type APIError struct {
	Status int               `json:"status"`
	Error  string            `json:"error"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var loadErr *loader.LoadError
	switch {
	case errors.Is(err, validation.ErrValidation),
		errors.Is(err, service.ErrInvalidQuery),
		errors.Is(err, engine.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrReloadInProgress):
		return http.StatusConflict
	case errors.As(err, &loadErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writeJSON", "error", err)
	}
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeError writes err with the status statusFor picks.
func writeError(w http.ResponseWriter, err error) {
	writeErr(w, statusFor(err), err)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		slog.Error("request failed", "status", status, "error", err)
	}
	body := APIError{
		Status: status,
		Error:  http.StatusText(status),
		Detail: err.Error(),
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	writeJSON(w, status, body)
}
