package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// APIError represents a structured API error
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// NewAPIError creates a new API error
func NewAPIError(code string, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// WithField names the request field the error concerns
func (e *APIError) WithField(field string) *APIError {
	e.Field = field
	return e
}

// WithDetails adds details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// FieldError is one entry of a VALIDATION_FAILED details list
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON structure for error responses
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, apiErr *APIError) {
	logAttrs := []any{
		"code", apiErr.Code,
		"message", apiErr.Message,
		"status", statusCode,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if apiErr.Field != "" {
		logAttrs = append(logAttrs, "field", apiErr.Field)
	}
	if apiErr.cause != nil {
		logAttrs = append(logAttrs, "cause", apiErr.cause.Error())
	}
	if requestID := w.Header().Get("X-Request-ID"); requestID != "" {
		logAttrs = append(logAttrs, "request_id", requestID)
	}

	if statusCode >= 500 {
		slog.Error("api error", logAttrs...)
	} else {
		slog.Warn("api error", logAttrs...)
	}

	WriteJSON(w, statusCode, ErrorResponse{Error: apiErr})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// BadRequest reports a request that could not be decoded
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusBadRequest, NewAPIError("BAD_REQUEST", message))
}

// WriteServiceError maps a service error to its HTTP response. Validation
// failures become 400 with the offending field, lookups 404, duplicates 409.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if list := domain.AsValidationErrors(err); len(list) > 0 {
		details := make([]FieldError, 0, len(list))
		for _, v := range list {
			details = append(details, FieldError{Field: v.Field, Message: v.Message})
		}
		apiErr := NewAPIError("VALIDATION_FAILED", list[0].Message).
			WithField(list[0].Field).
			WithCause(err)
		if len(details) > 1 {
			apiErr.WithDetails(details)
		}
		WriteError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	switch {
	case errors.Is(err, domain.ErrCourseNotFound):
		WriteError(w, r, http.StatusNotFound, NewAPIError("NOT_FOUND", "Course not found").WithField("courseId"))
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, r, http.StatusNotFound, NewAPIError("NOT_FOUND", "User not found"))
	case errors.Is(err, domain.ErrUserAlreadyExists):
		WriteError(w, r, http.StatusConflict, NewAPIError("CONFLICT", "Email is already registered").WithField("email"))
	default:
		WriteError(w, r, http.StatusInternalServerError,
			NewAPIError("INTERNAL_ERROR", "an unexpected error occurred").WithCause(err))
	}
}

// decodeJSON reads a JSON body, rejecting unknown fields
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
