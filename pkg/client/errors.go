package client

import (
	"errors"
	"fmt"
)

// ErrNetwork wraps transport failures. Its message is safe to show users.
var ErrNetwork = errors.New("network error: please check your connection and try again")

// APIError carries the server's message verbatim.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// LoginRequiredError is returned when a protected action runs without a
// cached profile. Next is where to continue after signing in.
type LoginRequiredError struct {
	Next string
}

func (e *LoginRequiredError) Error() string {
	return "login required (next: " + e.Next + ")"
}
