package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrMixedRestaurants  = errors.New("items belong to more than one restaurant")
	ErrItemUnavailable   = errors.New("menu item is unavailable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = errors.New("order status changed concurrently")
	ErrNotCancellable    = errors.New("order can only be cancelled while pending")
	ErrOrderLocked       = errors.New("order items can only change while pending")
	ErrAlreadyAssigned   = errors.New("order already has a delivery partner")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrOrderClosed       = errors.New("order is closed")
	ErrUnknownTier       = errors.New("unknown membership tier")
	ErrForbidden         = errors.New("forbidden")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// ValidationError reports a bad input value before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ThrottledError is returned by login while the cooldown is active.
type ThrottledError struct {
	WaitSeconds int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %ds", e.WaitSeconds)
}
