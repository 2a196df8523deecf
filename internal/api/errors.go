package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Sentinel errors for common server responses.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
)

// Error is a structured error returned by the workspace server.
type Error struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
}

// errorEnvelope is the server's error response body.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseError maps an HTTP error response to a sentinel where one
// exists, wrapping the server's message around it.
func parseError(statusCode int, body []byte) error {
	apiErr := &Error{Status: statusCode, Message: http.StatusText(statusCode)}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return errors.Wrap(ErrUnauthorized, apiErr.Message)
	case http.StatusForbidden:
		return errors.Wrap(ErrForbidden, apiErr.Message)
	case http.StatusNotFound:
		return errors.Wrap(ErrNotFound, apiErr.Message)
	case http.StatusTooManyRequests:
		return errors.Wrap(ErrRateLimited, apiErr.Message)
	default:
		return apiErr
	}
}

// retryable reports whether a response status warrants a retry.
func retryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}
