// Package response provides standardized HTTP response structures and helpers
// for the ops server. All API responses follow a consistent format with a
// data field for successful responses and an error field for failures.
package response

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/agentstation/catalogsync/pkg/errors"
)

// Response represents the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are ignored as headers are already sent
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// Conflict writes a 409 error response.
func Conflict(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusConflict, Fail("CONFLICT", message, details))
}

// BadGateway writes a 502 error response for a failed upstream inventory.
func BadGateway(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadGateway, Fail("UPSTREAM_ERROR", message, details))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail(
		"SERVICE_UNAVAILABLE",
		"Service unavailable",
		message,
	))
}

// InternalError writes a 500 error response.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ErrorFromType maps typed errors to appropriate HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	var validation *errors.ValidationError
	switch {
	case stderrors.As(err, &validation):
		JSON(w, http.StatusUnprocessableEntity, Fail("INVALID_ENTITY", "Refresh produced an invalid entity", validation.Error()))
	case stderrors.Is(err, errors.ErrCycleInProgress):
		Conflict(w, "Refresh already in progress", err.Error())
	case errors.IsNotConnected(err):
		ServiceUnavailable(w, err.Error())
	case stderrors.Is(err, errors.ErrFetch),
		stderrors.Is(err, errors.ErrTransform),
		stderrors.Is(err, errors.ErrHook),
		stderrors.Is(err, errors.ErrSink),
		stderrors.Is(err, context.DeadlineExceeded):
		BadGateway(w, "Refresh failed", err.Error())
	default:
		InternalError(w, err)
	}
}
