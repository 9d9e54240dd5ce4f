/*
ledger.go - Booking admission

PURPOSE:
  Decides whether a proposed holiday booking (new, or an edit of an existing
  one) may be committed against the employee's annual allowance, and commits
  it when admitted.

INVARIANTS:
  - A booking is admitted only while usedDays + newDays <= allowed for its
    (employee, holiday type, accounting year) key. Exceeding is strict:
    a booking that exactly fills the remaining allowance is permitted.
  - Edits that change none of {type, year, start, end} skip the quota check
    entirely. Flipping only the pending flag can never be rejected for
    allowance reasons, even if historical usage already exceeds quota.
  - A rejected proposal never writes anything.

CONCURRENCY:
  The read-usage / decide / write sequence for one (employee, type, year)
  key is serialized with a per-key mutex. Two concurrent proposals for the
  same key cannot both observe usage below quota and jointly overrun it.
  Proposals for different keys do not contend.
*/
package calendar

import (
	"context"
	"fmt"
	"sync"
)

// Proposal is a requested booking create or update.
type Proposal struct {
	Username string
	Start    Date
	End      *Date // nil = single day
	TypeID   int64
	Year     int // accounting year

	// Pending is ignored on create (new bookings always start pending).
	// On update, nil keeps the stored flag and non-nil overwrites it, so
	// callers can explicitly confirm or re-pend a booking.
	Pending *bool

	// BookingID is zero for a new booking, or the id of the booking being
	// edited. The owner of an existing booking is immutable: updates keep
	// the stored username and ignore the Username field.
	BookingID int64
}

// Ledger validates and records bookings against per-type annual allowances.
// It owns no state beyond admission locks; all records are fetched fresh
// from the store on every decision.
type Ledger struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger creates a ledger over the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Propose admits and commits a booking, or reports why it was rejected.
//
// Rejections: ErrEmployeeNotFound, ErrHolidayTypeNotFound, ErrBookingNotFound
// (edit of a missing id), ErrInvalidRange, ErrAllowanceNotConfigured,
// ErrDuplicateAllowance, and AllowanceExceededError with the usage breakdown.
func (l *Ledger) Propose(ctx context.Context, p Proposal) (*Booking, error) {
	var existing *Booking
	if p.BookingID != 0 {
		b, err := l.store.FindBooking(ctx, p.BookingID)
		if err != nil {
			return nil, fmt.Errorf("load booking %d: %w", p.BookingID, err)
		}
		if b == nil {
			return nil, ErrBookingNotFound
		}
		existing = b
	}

	username := p.Username
	if existing != nil {
		username = existing.Username
	}

	emp, err := l.store.FindEmployee(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load employee %s: %w", username, err)
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}

	typ, err := l.store.FindHolidayType(ctx, p.TypeID)
	if err != nil {
		return nil, fmt.Errorf("load holiday type %d: %w", p.TypeID, err)
	}
	if typ == nil {
		return nil, ErrHolidayTypeNotFound
	}

	newSpan, err := SpanDays(p.Start, p.End)
	if err != nil {
		return nil, err
	}

	fields := BookingFields{
		Username: username,
		Start:    p.Start,
		End:      p.End,
		TypeID:   p.TypeID,
		Year:     p.Year,
		Pending:  true,
	}
	if existing != nil {
		fields.Pending = existing.Pending
		if p.Pending != nil {
			fields.Pending = *p.Pending
		}
	}

	if !usageRelevantChange(existing, p) {
		// Nothing usage-relevant changed (a pending-flag-only edit):
		// commit without re-checking the quota.
		return l.store.UpdateBooking(ctx, existing.ID, fields)
	}

	// Serialize check-and-commit per (employee, type, year).
	key := fmt.Sprintf("%s|%d|%d", username, p.TypeID, p.Year)
	lock := l.admissionLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := l.checkAllowance(ctx, username, typ, p.Year, p.BookingID, newSpan); err != nil {
		return nil, err
	}

	if existing != nil {
		return l.store.UpdateBooking(ctx, existing.ID, fields)
	}
	return l.store.InsertBooking(ctx, fields)
}

// checkAllowance rejects the proposal when prior usage plus the new span
// would overrun the configured quota.
func (l *Ledger) checkAllowance(ctx context.Context, username string, typ *HolidayType, year int, excludeID int64, newSpan int) error {
	bookings, err := l.store.ListBookings(ctx, BookingFilter{
		Username:  username,
		TypeID:    typ.ID,
		Year:      year,
		ExcludeID: excludeID,
	})
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}

	used, err := UsedDays(bookings, excludeID)
	if err != nil {
		return fmt.Errorf("aggregate usage: %w", err)
	}

	allowed, err := l.resolveAllowance(ctx, typ, year)
	if err != nil {
		return err
	}

	unit := typ.QuotaUnit()
	usedAmt := NewAmountFromInt(used, unit)
	proposed := usedAmt.Add(NewAmountFromInt(newSpan, unit))
	if proposed.GreaterThan(allowed) {
		return &AllowanceExceededError{
			Used:      used,
			New:       newSpan,
			Allowed:   allowed,
			Remaining: allowed.Sub(usedAmt),
		}
	}
	return nil
}

// resolveAllowance fetches the configured quota for a (type, year) pair.
// Zero rows is a hard stop; multiple rows is an ambiguous configuration.
func (l *Ledger) resolveAllowance(ctx context.Context, typ *HolidayType, year int) (Amount, error) {
	rows, err := l.store.FindAllowances(ctx, typ.ID, year)
	if err != nil {
		return Amount{}, fmt.Errorf("load allowance: %w", err)
	}
	switch len(rows) {
	case 0:
		return Amount{}, fmt.Errorf("%w: type %d year %d", ErrAllowanceNotConfigured, typ.ID, year)
	case 1:
		return rows[0].Quantity, nil
	default:
		return Amount{}, &DuplicateAllowanceError{TypeID: typ.ID, Year: year, Count: len(rows)}
	}
}

// usageRelevantChange reports whether the proposal changes anything that
// counts against the allowance. Always true for new bookings.
func usageRelevantChange(existing *Booking, p Proposal) bool {
	if existing == nil {
		return true
	}
	if existing.TypeID != p.TypeID || existing.Year != p.Year {
		return true
	}
	if !existing.Start.Equal(p.Start) {
		return true
	}
	return !sameEnd(existing.End, p.End)
}

func sameEnd(a, b *Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// admissionLock returns the mutex for one admission key, creating it on
// first use. Locks are never reclaimed; the key space is bounded by
// employees x types x years.
func (l *Ledger) admissionLock(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
