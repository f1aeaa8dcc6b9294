// Package apperr defines the error taxonomy shared by handlers and services.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// ClientError is a request validation failure surfaced as a 4xx response.
type ClientError struct {
	Status int
	Reason string
}

func (e *ClientError) Error() string {
	return e.Reason
}

// BadRequest builds a 400 client error.
func BadRequest(format string, args ...any) *ClientError {
	return &ClientError{Status: http.StatusBadRequest, Reason: fmt.Sprintf(format, args...)}
}

// PayloadTooLarge builds a 413 client error.
func PayloadTooLarge(format string, args ...any) *ClientError {
	return &ClientError{Status: http.StatusRequestEntityTooLarge, Reason: fmt.Sprintf(format, args...)}
}

// AsClientError unwraps a ClientError if err carries one.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
