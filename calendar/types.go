/*
Package calendar implements the work-calendar domain: employees, holiday
types, annual allowances, and per-employee holiday bookings.

KEY CONCEPTS:
  - Date: a pure calendar date (midnight UTC, no wall-clock component)
  - Amount: a quantity with a unit (days or hours), decimal-backed
  - Booking: a holiday reservation counted against an annual allowance
  - Ledger: the admission logic that accepts or rejects bookings

The package owns no state. Every admission decision reads fresh records
through the Store interface; the store is the single source of truth.

SEE ALSO:
  - span.go:   inclusive day-span math
  - ledger.go: booking admission
  - errors.go: error taxonomy
  - store.go:  persistence contract
*/
package calendar

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Calendar date without a time component
// =============================================================================

// Date is a calendar date pinned to midnight UTC. All date arithmetic in this
// package goes through Date so daylight-saving and timezone offsets can never
// skew a day count.
type Date struct {
	Time time.Time
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Today returns the current date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }
func (d Date) IsZero() bool           { return d.Time.IsZero() }

// AddDays returns the date n days later (negative n goes back).
func (d Date) AddDays(n int) Date {
	t := d.normalize().AddDate(0, 0, n)
	return Date{Time: t}
}

// Year returns the calendar year of the date.
func (d Date) Year() int { return d.Time.Year() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// DaysBetween returns the whole-day difference to−from. Both dates are
// normalized to midnight UTC before differencing, so the result is exact.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Unit string

const (
	UnitDays  Unit = "days"
	UnitHours Unit = "hours"
)

// Amount is a quantity of days or hours. Decimal-backed to keep allowance
// arithmetic exact for fractional hour quantities.
type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// ParseAmount builds an Amount from a stored decimal string. A malformed
// value is an error, never a silent zero quota.
func ParseAmount(value string, unit Unit) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return Amount{Value: d, Unit: unit}, nil
}

func (a Amount) Add(b Amount) Amount         { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount         { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) GreaterThan(b Amount) bool   { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool      { return a.Value.LessThan(b.Value) }
func (a Amount) IsPositive() bool            { return a.Value.IsPositive() }
func (a Amount) IsZero() bool                { return a.Value.IsZero() }
func (a Amount) Float64() float64            { f, _ := a.Value.Float64(); return f }
func (a Amount) String() string              { return a.Value.String() + " " + string(a.Unit) }

// =============================================================================
// DOMAIN RECORDS
// =============================================================================

// Employee is identified by a unique username.
// Invariant: StartDate <= EndDate when EndDate is present.
type Employee struct {
	Username  string
	StartDate Date
	EndDate   *Date // nil = still active
}

// ActiveOn reports whether the employee is employed on the given date.
func (e Employee) ActiveOn(d Date) bool {
	if d.Before(e.StartDate) {
		return false
	}
	return e.EndDate == nil || !e.EndDate.Before(d)
}

// HolidayType distinguishes whole-day holiday kinds from hour-denominated ones.
type HolidayType struct {
	ID     int64
	Name   string
	Hourly bool
}

// QuotaUnit returns the unit allowance quantities of this type are measured in.
func (t HolidayType) QuotaUnit() Unit {
	if t.Hourly {
		return UnitHours
	}
	return UnitDays
}

// Allowance is the configured quota for one holiday type in one calendar year.
// Invariant: Quantity > 0. At most one allowance per (type, year) is expected;
// the resolver rejects ambiguous configurations.
type Allowance struct {
	ID       int64
	TypeID   int64
	Quantity Amount
	Year     int
}

// Booking is a holiday reservation owned by an employee.
//
// Year is the accounting year the booking counts against, which may differ
// from the calendar year of the dates (an explicit field, never derived).
// Invariant: End >= Start when End is present.
type Booking struct {
	ID       int64
	Username string
	Start    Date
	End      *Date // nil = single-day booking
	TypeID   int64
	Pending  bool
	Year     int
}

// BookingFields carries the writable attributes of a booking for inserts
// and updates. The store assigns IDs on insert.
type BookingFields struct {
	Username string
	Start    Date
	End      *Date
	TypeID   int64
	Pending  bool
	Year     int
}

// BookingFilter narrows ListBookings. Zero values mean "no constraint".
type BookingFilter struct {
	Username  string
	TypeID    int64
	Year      int
	ExcludeID int64
}
