// Package memory provides an in-memory calendar.Store for tests and
// development. Semantics match store/sqlite, minus durability.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/deskhub/team-portal/calendar"
)

type Store struct {
	mu         sync.RWMutex
	employees  map[string]calendar.Employee
	types      map[int64]calendar.HolidayType
	allowances map[int64]calendar.Allowance
	bookings   map[int64]calendar.Booking

	nextTypeID      int64
	nextAllowanceID int64
	nextBookingID   int64
}

func New() *Store {
	return &Store{
		employees:  make(map[string]calendar.Employee),
		types:      make(map[int64]calendar.HolidayType),
		allowances: make(map[int64]calendar.Allowance),
		bookings:   make(map[int64]calendar.Booking),
	}
}

// =============================================================================
// SEED HELPERS (not part of calendar.Store)
// =============================================================================

// PutEmployee inserts or replaces an employee.
func (s *Store) PutEmployee(e calendar.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.Username] = e
}

// PutHolidayType inserts a holiday type, assigning an id when unset.
func (s *Store) PutHolidayType(t calendar.HolidayType) calendar.HolidayType {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		s.nextTypeID++
		t.ID = s.nextTypeID
	} else if t.ID > s.nextTypeID {
		s.nextTypeID = t.ID
	}
	s.types[t.ID] = t
	return t
}

// PutAllowance inserts an allowance, assigning an id when unset.
func (s *Store) PutAllowance(a calendar.Allowance) calendar.Allowance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.nextAllowanceID++
		a.ID = s.nextAllowanceID
	} else if a.ID > s.nextAllowanceID {
		s.nextAllowanceID = a.ID
	}
	s.allowances[a.ID] = a
	return a
}

// =============================================================================
// calendar.Store IMPLEMENTATION
// =============================================================================

func (s *Store) FindEmployee(_ context.Context, username string) (*calendar.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.employees[username]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *Store) FindHolidayType(_ context.Context, id int64) (*calendar.HolidayType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.types[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (s *Store) FindAllowances(_ context.Context, typeID int64, year int) ([]calendar.Allowance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []calendar.Allowance
	for _, a := range s.allowances {
		if a.TypeID == typeID && a.Year == year {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) ListBookings(_ context.Context, f calendar.BookingFilter) ([]calendar.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []calendar.Booking
	for _, b := range s.bookings {
		if f.Username != "" && b.Username != f.Username {
			continue
		}
		if f.TypeID != 0 && b.TypeID != f.TypeID {
			continue
		}
		if f.Year != 0 && b.Year != f.Year {
			continue
		}
		if f.ExcludeID != 0 && b.ID == f.ExcludeID {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) FindBooking(_ context.Context, id int64) (*calendar.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.bookings[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (s *Store) InsertBooking(_ context.Context, fields calendar.BookingFields) (*calendar.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBookingID++
	b := calendar.Booking{
		ID:       s.nextBookingID,
		Username: fields.Username,
		Start:    fields.Start,
		End:      fields.End,
		TypeID:   fields.TypeID,
		Pending:  fields.Pending,
		Year:     fields.Year,
	}
	s.bookings[b.ID] = b
	return &b, nil
}

func (s *Store) UpdateBooking(_ context.Context, id int64, fields calendar.BookingFields) (*calendar.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.bookings[id]
	if !ok {
		return nil, calendar.ErrBookingNotFound
	}
	b := calendar.Booking{
		ID:       id,
		Username: existing.Username,
		Start:    fields.Start,
		End:      fields.End,
		TypeID:   fields.TypeID,
		Pending:  fields.Pending,
		Year:     fields.Year,
	}
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) DeleteBooking(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return calendar.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}
