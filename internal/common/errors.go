// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Weighing errors.
	ErrEmptyPlate       = errors.New("plate number is empty")
	ErrWeightTooLow     = errors.New("weight below threshold")
	ErrDuplicatePending = errors.New("vehicle already pending")
	ErrAlreadyCompleted = errors.New("transaction already completed")

	// Scale device errors.
	ErrDeviceUnavailable = errors.New("scale device unavailable")

	// Session errors.
	ErrInvalidPIN = errors.New("PIN not registered")
	ErrPINFormat  = errors.New("PIN must be 4 digits")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the operator.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
