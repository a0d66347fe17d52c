package services

import (
	"errors"

	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound                = errors.New("record not found")
	ErrInvalidLoanTerms        = errors.New("invalid loan terms")
	ErrInvalidPayment          = errors.New("invalid payment")
	ErrMissingStartDate        = errors.New("loan start date is not set")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrUnsupportedCovenantType = errors.New("unsupported covenant type")
	ErrConcurrentModification  = errors.New("loan is being evaluated concurrently")
	ErrUnauthorized            = errors.New("actor not permitted")
)

// translateNotFound maps the store's missing-record error to the engine's
// typed ErrNotFound so callers never fall back to fabricated data.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
