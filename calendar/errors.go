/*
errors.go - Error taxonomy for the calendar domain

Every rejection the ledger can produce is either a sentinel (use errors.Is)
or a structured error that unwraps to one. Nothing here is retried: these
represent bad input or a business-rule rejection, not transient failure.
Storage faults propagate wrapped with %w and match none of the sentinels.
*/
package calendar

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a booking references an unknown username.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrHolidayTypeNotFound is returned when a booking references an unknown holiday type.
	ErrHolidayTypeNotFound = errors.New("holiday type not found")

	// ErrBookingNotFound is returned when updating or deleting a nonexistent booking.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAllowanceNotFound is returned when updating or deleting a
	// nonexistent allowance row.
	ErrAllowanceNotFound = errors.New("allowance not found")

	// ErrAllowanceNotConfigured is returned when no allowance exists for a
	// (type, year) pair. A hard stop, never a default-to-zero: a booking
	// cannot be validated without a configured quota.
	ErrAllowanceNotConfigured = errors.New("allowance not configured for holiday type and year")

	// ErrDuplicateAllowance is returned when more than one allowance row
	// matches a (type, year) pair. The configuration is ambiguous and the
	// booking is rejected rather than validated against an arbitrary row.
	ErrDuplicateAllowance = errors.New("duplicate allowance configuration")

	// ErrInvalidRange is returned when a booking's end date precedes its start date.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrAllowanceExceeded is returned when a booking would overrun the annual quota.
	ErrAllowanceExceeded = errors.New("allowance exceeded")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidRangeError reports an end date before the start date.
type InvalidRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s before start %s", e.End, e.Start)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// AllowanceExceededError carries the usage breakdown of a rejected booking so
// callers can render a precise message. Remaining is allowed minus used, not
// counting the rejected span.
type AllowanceExceededError struct {
	Used      int
	New       int
	Allowed   Amount
	Remaining Amount
}

func (e *AllowanceExceededError) Error() string {
	return fmt.Sprintf("allowance exceeded: used %d + new %d > allowed %s (remaining %s)",
		e.Used, e.New, e.Allowed, e.Remaining)
}

func (e *AllowanceExceededError) Unwrap() error { return ErrAllowanceExceeded }

// DuplicateAllowanceError identifies an ambiguous (type, year) configuration.
type DuplicateAllowanceError struct {
	TypeID int64
	Year   int
	Count  int
}

func (e *DuplicateAllowanceError) Error() string {
	return fmt.Sprintf("duplicate allowance configuration: %d rows for type %d year %d",
		e.Count, e.TypeID, e.Year)
}

func (e *DuplicateAllowanceError) Unwrap() error { return ErrDuplicateAllowance }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error maps to a missing referenced record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrHolidayTypeNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrAllowanceNotFound) ||
		errors.Is(err, ErrAllowanceNotConfigured)
}

// IsClientError reports whether the error is a business-rule rejection of
// otherwise well-formed input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrAllowanceExceeded) ||
		errors.Is(err, ErrDuplicateAllowance)
}
