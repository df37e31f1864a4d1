package types

import (
	"net/http"

	"github.com/goccy/go-json"
)

// APIError is the JSON error body returned to clients.
type APIError struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	ResetAt string `json:"resetAt,omitempty"`
}

// NewAPIError creates a new API error.
func NewAPIError(message string, status int) *APIError {
	return &APIError{Error: message, Status: status}
}

// WriteError writes an API error to the response writer.
// The status in the body always matches the HTTP status.
func WriteError(w http.ResponseWriter, statusCode int, err *APIError) {
	err.Status = statusCode
	WriteJSON(w, statusCode, err)
}

// WriteJSON writes v as a JSON response body.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// Common error constructors

// ErrInvalidRequest creates a 400 error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(message, http.StatusBadRequest)
}

// ErrAuthentication creates a 401 error.
func ErrAuthentication(message string) *APIError {
	return NewAPIError(message, http.StatusUnauthorized)
}

// ErrPermission creates a 403 error.
func ErrPermission(message string) *APIError {
	return NewAPIError(message, http.StatusForbidden)
}

// ErrRateLimit creates a 429 error with the window reset time.
func ErrRateLimit(message, resetAt string) *APIError {
	return &APIError{Error: message, Status: http.StatusTooManyRequests, ResetAt: resetAt}
}

// ErrServer creates a 500 error.
func ErrServer(message string) *APIError {
	return NewAPIError(message, http.StatusInternalServerError)
}

// ErrNotFound creates a 404 error.
func ErrNotFound(message string) *APIError {
	return NewAPIError(message, http.StatusNotFound)
}

// ErrBadGateway creates a 502 error.
func ErrBadGateway(message string) *APIError {
	return NewAPIError(message, http.StatusBadGateway)
}
