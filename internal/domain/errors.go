package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDeskNotFound        = errors.New("desk not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidID           = errors.New("invalid id")
	ErrDuplicateLabel      = errors.New("desk label already in use")
	ErrDuplicateSKU        = errors.New("sku already in use")
	ErrBookingConflict     = errors.New("desk already booked for this time window")
	ErrDeskInMaintenance   = errors.New("desk is under maintenance")
	ErrDeskOccupiedNow     = errors.New("desk has an active booking right now")
	ErrDeskHasBookings     = errors.New("desk has open bookings")
	ErrInvalidTransition   = errors.New("illegal status transition")
	ErrBookingTerminal     = errors.New("booking is completed or cancelled")
	ErrTotalMismatch       = errors.New("order total does not match line items")
	ErrEmptyOrder          = errors.New("order has no line items")
	ErrComboNesting        = errors.New("combo components must be plain items")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrUnavailable         = errors.New("storage unavailable")
)

// FieldError reports a malformed or missing input value. One error maps to
// exactly one field so clients can attach it to the right form input.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a FieldError for the given field.
func Invalid(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a per-field validation failure.
func IsValidation(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
