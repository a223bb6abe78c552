// Package apierrors renders widget host failures as JSON error envelopes.
package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	TypeInvalidRequest  = "invalid_request_error"
	TypeNotFound        = "not_found_error"
	TypeRequestTooLarge = "request_too_large"
	TypeAPI             = "api_error"
)

type Envelope struct {
	Type      string `json:"type"`
	Error     Inner  `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type Inner struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Error is a host failure with the status it is served under.
type Error struct {
	Status  int
	Type    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
}

func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Type: TypeNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Type: TypeInvalidRequest, Message: message}
}

func TooLarge(limit int64) *Error {
	return &Error{
		Status:  http.StatusRequestEntityTooLarge,
		Type:    TypeRequestTooLarge,
		Message: fmt.Sprintf("request body exceeds %d bytes", limit),
	}
}

func MethodNotAllowed(method string) *Error {
	return &Error{Status: http.StatusMethodNotAllowed, Type: TypeInvalidRequest, Message: "method not allowed: " + method}
}

func Marshal(errorType, message, requestID string) []byte {
	if strings.TrimSpace(message) == "" {
		message = "request failed"
	}
	body, err := json.Marshal(Envelope{
		Type:      "error",
		Error:     Inner{Type: errorType, Message: message},
		RequestID: requestID,
	})
	if err != nil {
		return []byte(`{"type":"error","error":{"type":"api_error","message":"failed to marshal error"}}`)
	}
	return body
}

// Write serves err as an envelope. Errors that are not an *Error are served
// as a 500 without exposing their text.
func Write(w http.ResponseWriter, err error, requestID string) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = &Error{Status: http.StatusInternalServerError, Type: TypeAPI, Message: "internal error"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_, _ = w.Write(Marshal(apiErr.Type, apiErr.Message, requestID))
}
