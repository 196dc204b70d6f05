// Package respond writes the JSON envelope shared by every endpoint.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

// Machine-readable error codes
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeConflict         = "CONFLICT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

// APIError is the JSON body of a failed request
type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// JSON writes data with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// Error logs and writes a failure envelope. cause is logged, never sent.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, cause error) {
	logAttrs := []any{
		"code", code,
		"message", message,
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if cause != nil {
		logAttrs = append(logAttrs, "cause", cause.Error())
	}
	if requestID := w.Header().Get("X-Request-ID"); requestID != "" {
		logAttrs = append(logAttrs, "request_id", requestID)
	}

	if status >= 500 {
		slog.Error("api error", logAttrs...)
	} else {
		slog.Warn("api error", logAttrs...)
	}

	JSON(w, status, APIError{Message: message, Code: code})
}

// DomainError maps err to a status and code. Internal failures are reported
// with fallback as the message.
func DomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, code := Classify(err)
	message := domain.MessageOf(err, fallback)

	var cause error
	var de *domain.Error
	if errors.As(err, &de) {
		cause = de.Cause()
	} else {
		cause = err
	}
	Error(w, r, status, code, message, cause)
}

// Classify returns the HTTP status and code for err
func Classify(err error) (int, string) {
	switch domain.KindOf(err) {
	case domain.ErrInvalidInput:
		return http.StatusBadRequest, CodeValidation
	case domain.ErrConflict:
		return http.StatusConflict, CodeConflict
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized, CodeUnauthorized
	case domain.ErrNotFound:
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// BadRequest writes a 400 validation failure
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusBadRequest, CodeValidation, message, nil)
}

// Unauthorized writes a 401 failure
func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// MethodNotAllowed writes a 405 failure
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
}

// NotFound writes a 404 failure
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusNotFound, CodeNotFound, message, nil)
}

// Internal writes a 500 failure with a generic message
func Internal(w http.ResponseWriter, r *http.Request, message string, cause error) {
	Error(w, r, http.StatusInternalServerError, CodeInternal, message, cause)
}
