package calendar

import "context"

// Store is the persistence contract the ledger reads and writes through.
// Find methods return (nil, nil) for absent records; only infrastructure
// faults surface as errors. Mutations on missing rows return
// ErrBookingNotFound.
//
// Implementations: store/sqlite (production), store/memory (tests).
type Store interface {
	FindEmployee(ctx context.Context, username string) (*Employee, error)
	FindHolidayType(ctx context.Context, id int64) (*HolidayType, error)

	// FindAllowances returns every allowance row for a (type, year) pair.
	// The ledger treats zero rows as unconfigured and multiple rows as an
	// ambiguous configuration; the store does not arbitrate.
	FindAllowances(ctx context.Context, typeID int64, year int) ([]Allowance, error)

	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	FindBooking(ctx context.Context, id int64) (*Booking, error)
	InsertBooking(ctx context.Context, fields BookingFields) (*Booking, error)
	UpdateBooking(ctx context.Context, id int64, fields BookingFields) (*Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}
