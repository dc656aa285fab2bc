package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Services match on these via errors.Is to decide
// how a failure maps to a transport response.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAmountMismatch   = errors.New("amount mismatch")
	ErrConfiguration    = errors.New("configuration error")
)

// DomainError wraps a sentinel kind with a human-readable message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewValidationError reports invalid input shape or range.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewNotFoundError reports an absent entity by type and identifier.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Err: ErrNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewForbiddenError reports an actor not authorized for an entity.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Err: ErrForbidden, Message: message}
}

// NewConflictError reports a violated state precondition.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewInvalidStateError reports an illegal state-machine transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Err: ErrInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewInvalidSignatureError reports a failed payment-callback signature check.
func NewInvalidSignatureError(message string) *DomainError {
	return &DomainError{Err: ErrInvalidSignature, Message: message}
}

// NewAmountMismatchError reports a callback amount that disagrees with the stored payment.
func NewAmountMismatchError(expected, got int64) *DomainError {
	return &DomainError{Err: ErrAmountMismatch, Message: fmt.Sprintf("callback amount %d does not match expected %d", got, expected)}
}

// NewConfigurationError reports missing or invalid configuration. Fatal at startup.
func NewConfigurationError(message string) *DomainError {
	return &DomainError{Err: ErrConfiguration, Message: message}
}
