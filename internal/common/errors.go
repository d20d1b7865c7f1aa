package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// NewAppError builds an AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ProviderError classifies a failed acquisition call. Transient errors
// (network failures, 5xx) are retried; terminal errors (4xx, malformed
// request) fail the call immediately and trigger fallback.
type ProviderError struct {
	Provider  string
	Status    int // HTTP status, 0 for transport-level failures
	Message   string
	Transient bool
	Cause     error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewTransientError marks a provider failure as retryable.
func NewTransientError(provider string, status int, msg string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Status: status, Message: msg, Transient: true, Cause: cause}
}

// NewTerminalError marks a provider failure as non-retryable.
func NewTerminalError(provider string, status int, msg string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Status: status, Message: msg, Transient: false, Cause: cause}
}

// IsTransient reports whether err is a retryable provider failure. Errors
// that are not ProviderErrors (raw transport errors) count as transient.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return err != nil
}
