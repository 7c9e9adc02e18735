package handler

// RESPONSE HELPERS:
// Every response body is JSON, and every error has the same shape:
//
//	{"message": "Cat not found", "error": "NotFound"}
//
// `error` is one of InvalidId, InvalidReference, ValidationFailed, NotFound
// or Unexpected. A store-level constraint rejection arrives here already
// shaped as ValidationFailed, so callers cannot tell which layer caught it.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/whiskerbook/internal/apperror"
)

// Error names sent in the `error` field.
const (
	ErrorInvalidID        = "InvalidId"
	ErrorInvalidReference = "InvalidReference"
	ErrorValidation       = "ValidationFailed"
	ErrorNotFound         = "NotFound"
	ErrorMethodNotAllowed = "MethodNotAllowed"
	ErrorUnexpected       = "Unexpected"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all that is left is to log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its status code and error name.
// Anything that is not an *apperror.AppError is a 500 with a generic message:
// driver errors can carry SQL and file paths and never reach the caller.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, name := classify(err)
		writeJSON(w, status, ErrorResponse{
			Message: appErr.Message,
			Error:   name,
		})
		return
	}

	logger.Error("unexpected error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Message: "An internal error occurred",
		Error:   ErrorUnexpected,
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrInvalidID):
		return http.StatusBadRequest, ErrorInvalidID
	case errors.Is(err, apperror.ErrInvalidReference):
		return http.StatusBadRequest, ErrorInvalidReference
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, ErrorValidation
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, ErrorNotFound
	default:
		return http.StatusInternalServerError, ErrorUnexpected
	}
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Message: "Route " + r.Method + " " + r.URL.Path + " not found",
		Error:   ErrorNotFound,
	})
}

// MethodNotAllowed answers a known path requested with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Message: "Method " + r.Method + " not allowed on " + r.URL.Path,
		Error:   ErrorMethodNotAllowed,
	})
}

// InternalError answers with the generic 500 body. The server's recoverer
// uses it after a handler panics.
func InternalError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Message: "An internal error occurred",
		Error:   ErrorUnexpected,
	})
}
