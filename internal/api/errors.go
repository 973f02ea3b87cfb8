package api

import (
	"errors"
	"fmt"
)

// Error is an application-level rejection: the server understood the request
// and refused it. These are surfaced verbatim and never retried or queued.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsApplicationError reports whether err (or anything it wraps) is a
// server-side rejection, as opposed to a transport failure.
func IsApplicationError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}

// errorBody is the structured error payload the backend returns on 4xx/5xx.
type errorBody struct {
	Error string `json:"error"`
}
