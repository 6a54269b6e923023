package application

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("User with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrAccountDisabled    = errors.New("Account is deactivated. Please contact support.")
	ErrUserNotFound       = errors.New("User not found")
	ErrStorageUnavailable = errors.New("Server Error")
	ErrInvalidToken       = errors.New("Invalid or expired token")
	ErrFeatureDisabled    = errors.New("feature not configured")
)

// ValidationError carries a caller-facing message plus per-field details.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrValidation.Error()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(msg string, fields map[string]string) error {
	return &ValidationError{Message: msg, Fields: fields}
}

// storageErr hides driver details behind ErrStorageUnavailable while keeping
// the cause for logs.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
