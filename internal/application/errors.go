package application

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a required identifier is missing.
	ErrInvalidInput = errors.New("application: invalid input")
	// ErrUnauthorized is returned when the caller's role does not permit the operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the referenced batch does not exist.
	ErrNotFound = errors.New("application: not found")
)

// PolicyDeniedError rejects an admission attempt with a human-readable
// reason. The reason is surfaced to the caller verbatim.
type PolicyDeniedError struct {
	Reason string
}

// Error implements the error interface.
func (e *PolicyDeniedError) Error() string {
	if e == nil {
		return ""
	}
	return e.Reason
}

func policyDenied(reason string) error {
	return &PolicyDeniedError{Reason: reason}
}

// ProviderError wraps a failure communicating with the video provider. It is
// reported to callers as a generic failure; the wrapped cause is for logs.
type ProviderError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("meeting provider: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func providerFailure(op string, err error) error {
	return &ProviderError{Op: op, Err: err}
}
