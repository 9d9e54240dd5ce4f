package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/deskhub/team-portal/calendar"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// ListEmployees returns all employees ordered by username.
func (s *Store) ListEmployees(ctx context.Context) ([]calendar.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT username, start_date, end_date FROM employees ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []calendar.Employee
	for rows.Next() {
		var e calendar.Employee
		var start string
		var end sql.NullString
		if err := rows.Scan(&e.Username, &start, &end); err != nil {
			return nil, err
		}
		e.StartDate = scanDate(start)
		e.EndDate = scanNullDate(end)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// FindEmployee retrieves an employee by username. Returns nil when absent.
func (s *Store) FindEmployee(ctx context.Context, username string) (*calendar.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e calendar.Employee
	var start string
	var end sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT username, start_date, end_date FROM employees WHERE username = ?",
		username,
	).Scan(&e.Username, &start, &end)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.StartDate = scanDate(start)
	e.EndDate = scanNullDate(end)
	return &e, nil
}

// InsertEmployee creates a new employee record.
func (s *Store) InsertEmployee(ctx context.Context, e calendar.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO employees (username, start_date, end_date) VALUES (?, ?, ?)",
		e.Username, e.StartDate.String(), nullDate(e.EndDate))
	return err
}

// UpdateEmployee replaces an employee's employment dates.
func (s *Store) UpdateEmployee(ctx context.Context, e calendar.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE employees SET start_date = ?, end_date = ? WHERE username = ?",
		e.StartDate.String(), nullDate(e.EndDate), e.Username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return calendar.ErrEmployeeNotFound
	}
	return nil
}

// DeleteEmployee removes an employee. Bookings are not cascade-deleted.
func (s *Store) DeleteEmployee(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE username = ?", username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return calendar.ErrEmployeeNotFound
	}
	return nil
}

// =============================================================================
// HOLIDAY TYPES
// =============================================================================

// ListHolidayTypes returns all holiday types.
func (s *Store) ListHolidayTypes(ctx context.Context) ([]calendar.HolidayType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, hourly FROM holiday_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []calendar.HolidayType
	for rows.Next() {
		var t calendar.HolidayType
		if err := rows.Scan(&t.ID, &t.Name, &t.Hourly); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// FindHolidayType retrieves a holiday type by id. Returns nil when absent.
func (s *Store) FindHolidayType(ctx context.Context, id int64) (*calendar.HolidayType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t calendar.HolidayType
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, hourly FROM holiday_types WHERE id = ?", id,
	).Scan(&t.ID, &t.Name, &t.Hourly)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertHolidayType creates a holiday type and returns it with its id.
func (s *Store) InsertHolidayType(ctx context.Context, name string, hourly bool) (*calendar.HolidayType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO holiday_types (name, hourly) VALUES (?, ?)", name, hourly)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &calendar.HolidayType{ID: id, Name: name, Hourly: hourly}, nil
}

// UpdateHolidayType replaces a holiday type's attributes.
func (s *Store) UpdateHolidayType(ctx context.Context, t calendar.HolidayType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE holiday_types SET name = ?, hourly = ? WHERE id = ?",
		t.Name, t.Hourly, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return calendar.ErrHolidayTypeNotFound
	}
	return nil
}

// DeleteHolidayType removes a holiday type.
func (s *Store) DeleteHolidayType(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holiday_types WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return calendar.ErrHolidayTypeNotFound
	}
	return nil
}

// =============================================================================
// ALLOWANCES
// =============================================================================

// AllowanceDetail is an allowance joined with its holiday type.
type AllowanceDetail struct {
	calendar.Allowance
	TypeName string
	Hourly   bool
}

// FindAllowances returns every allowance row for a (type, year) pair,
// oldest first. The ledger decides how to treat zero or multiple rows.
func (s *Store) FindAllowances(ctx context.Context, typeID int64, year int) ([]calendar.Allowance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.type_id, a.quantity, a.year, ht.hourly
		FROM allowances a
		JOIN holiday_types ht ON a.type_id = ht.id
		WHERE a.type_id = ? AND a.year = ?
		ORDER BY a.id ASC
	`, typeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allowances []calendar.Allowance
	for rows.Next() {
		var a calendar.Allowance
		var quantity string
		var hourly bool
		if err := rows.Scan(&a.ID, &a.TypeID, &quantity, &a.Year, &hourly); err != nil {
			return nil, err
		}
		unit := calendar.UnitDays
		if hourly {
			unit = calendar.UnitHours
		}
		a.Quantity, err = calendar.ParseAmount(quantity, unit)
		if err != nil {
			return nil, fmt.Errorf("allowance %d: %w", a.ID, err)
		}
		allowances = append(allowances, a)
	}
	return allowances, rows.Err()
}

// ListAllowances returns allowances joined with their type, optionally
// filtered by year (0 = all years).
func (s *Store) ListAllowances(ctx context.Context, year int) ([]AllowanceDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT a.id, a.type_id, a.quantity, a.year, ht.name, ht.hourly
		FROM allowances a
		JOIN holiday_types ht ON a.type_id = ht.id
	`
	var args []any
	if year != 0 {
		query += " WHERE a.year = ?"
		args = append(args, year)
	}
	query += " ORDER BY a.year DESC, ht.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []AllowanceDetail
	for rows.Next() {
		var d AllowanceDetail
		var quantity string
		if err := rows.Scan(&d.ID, &d.TypeID, &quantity, &d.Year, &d.TypeName, &d.Hourly); err != nil {
			return nil, err
		}
		unit := calendar.UnitDays
		if d.Hourly {
			unit = calendar.UnitHours
		}
		d.Quantity, err = calendar.ParseAmount(quantity, unit)
		if err != nil {
			return nil, fmt.Errorf("allowance %d: %w", d.ID, err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// InsertAllowance creates an allowance row and returns it joined with its type.
func (s *Store) InsertAllowance(ctx context.Context, typeID int64, quantity calendar.Amount, year int) (*AllowanceDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO allowances (type_id, quantity, year) VALUES (?, ?, ?)",
		typeID, quantity.Value.String(), year)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.getAllowanceDetail(ctx, id)
}

// UpdateAllowance replaces an allowance row and returns the joined result.
func (s *Store) UpdateAllowance(ctx context.Context, id, typeID int64, quantity calendar.Amount, year int) (*AllowanceDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE allowances SET type_id = ?, quantity = ?, year = ? WHERE id = ?",
		typeID, quantity.Value.String(), year, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, calendar.ErrAllowanceNotFound
	}
	return s.getAllowanceDetail(ctx, id)
}

// DeleteAllowance removes an allowance row.
func (s *Store) DeleteAllowance(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM allowances WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return calendar.ErrAllowanceNotFound
	}
	return nil
}

func (s *Store) getAllowanceDetail(ctx context.Context, id int64) (*AllowanceDetail, error) {
	var d AllowanceDetail
	var quantity string
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.type_id, a.quantity, a.year, ht.name, ht.hourly
		FROM allowances a
		JOIN holiday_types ht ON a.type_id = ht.id
		WHERE a.id = ?
	`, id).Scan(&d.ID, &d.TypeID, &quantity, &d.Year, &d.TypeName, &d.Hourly)
	if err == sql.ErrNoRows {
		return nil, calendar.ErrAllowanceNotFound
	}
	if err != nil {
		return nil, err
	}
	unit := calendar.UnitDays
	if d.Hourly {
		unit = calendar.UnitHours
	}
	d.Quantity, err = calendar.ParseAmount(quantity, unit)
	if err != nil {
		return nil, fmt.Errorf("allowance %d: %w", d.ID, err)
	}
	return &d, nil
}

// =============================================================================
// BOOKINGS (calendar.Store)
// =============================================================================

const bookingColumns = "id, username, start_date, end_date, type_id, pending, accounting_year"

// ListBookings returns bookings matching the filter, oldest id first.
func (s *Store) ListBookings(ctx context.Context, f calendar.BookingFilter) ([]calendar.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + bookingColumns + " FROM bookings"
	var conditions []string
	var args []any
	if f.Username != "" {
		conditions = append(conditions, "username = ?")
		args = append(args, f.Username)
	}
	if f.TypeID != 0 {
		conditions = append(conditions, "type_id = ?")
		args = append(args, f.TypeID)
	}
	if f.Year != 0 {
		conditions = append(conditions, "accounting_year = ?")
		args = append(args, f.Year)
	}
	if f.ExcludeID != 0 {
		conditions = append(conditions, "id != ?")
		args = append(args, f.ExcludeID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []calendar.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// FindBooking retrieves a booking by id. Returns nil when absent.
func (s *Store) FindBooking(ctx context.Context, id int64) (*calendar.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)

	var b calendar.Booking
	var start string
	var end sql.NullString
	err := row.Scan(&b.ID, &b.Username, &start, &end, &b.TypeID, &b.Pending, &b.Year)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Start = scanDate(start)
	b.End = scanNullDate(end)
	return &b, nil
}

// InsertBooking persists a new booking and returns it with its id.
func (s *Store) InsertBooking(ctx context.Context, fields calendar.BookingFields) (*calendar.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (username, start_date, end_date, type_id, pending, accounting_year)
		VALUES (?, ?, ?, ?, ?, ?)
	`, fields.Username, fields.Start.String(), nullDate(fields.End),
		fields.TypeID, fields.Pending, fields.Year)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return bookingFromFields(id, fields), nil
}

// UpdateBooking replaces a booking's writable fields. The username column is
// left untouched: booking ownership is immutable.
func (s *Store) UpdateBooking(ctx context.Context, id int64, fields calendar.BookingFields) (*calendar.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The returned record must carry the stored owner, not whatever the
	// caller put in fields.
	var username string
	err := s.db.QueryRowContext(ctx,
		"SELECT username FROM bookings WHERE id = ?", id).Scan(&username)
	if err == sql.ErrNoRows {
		return nil, calendar.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE bookings
		SET start_date = ?, end_date = ?, type_id = ?, pending = ?, accounting_year = ?
		WHERE id = ?
	`, fields.Start.String(), nullDate(fields.End), fields.TypeID,
		fields.Pending, fields.Year, id)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	b := bookingFromFields(id, fields)
	b.Username = username
	return b, nil
}

// DeleteBooking removes a booking unconditionally.
func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return calendar.ErrBookingNotFound
	}
	return nil
}

// =============================================================================
// BOOKING DETAIL LISTING
// =============================================================================

// BookingDetail is a booking joined with its holiday type.
type BookingDetail struct {
	calendar.Booking
	TypeName string
	Hourly   bool
}

// BookingQuery narrows ListBookingDetails. Zero values mean "no constraint".
type BookingQuery struct {
	Username string
	TypeID   int64
	Year     int
	OnDate   *calendar.Date // exact start-date match
}

// ListBookingDetails returns bookings joined with their type for display.
func (s *Store) ListBookingDetails(ctx context.Context, q BookingQuery) ([]BookingDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT b.id, b.username, b.start_date, b.end_date, b.type_id, b.pending,
		       b.accounting_year, ht.name, ht.hourly
		FROM bookings b
		JOIN employees e ON b.username = e.username
		JOIN holiday_types ht ON b.type_id = ht.id
	`
	var conditions []string
	var args []any
	if q.Username != "" {
		conditions = append(conditions, "b.username = ?")
		args = append(args, q.Username)
	}
	if q.TypeID != 0 {
		conditions = append(conditions, "b.type_id = ?")
		args = append(args, q.TypeID)
	}
	if q.Year != 0 {
		conditions = append(conditions, "b.accounting_year = ?")
		args = append(args, q.Year)
	}
	if q.OnDate != nil {
		conditions = append(conditions, "b.start_date = ?")
		args = append(args, q.OnDate.String())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY b.start_date ASC, b.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []BookingDetail
	for rows.Next() {
		var d BookingDetail
		var start string
		var end sql.NullString
		if err := rows.Scan(&d.ID, &d.Username, &start, &end, &d.TypeID,
			&d.Pending, &d.Year, &d.TypeName, &d.Hourly); err != nil {
			return nil, err
		}
		d.Start = scanDate(start)
		d.End = scanNullDate(end)
		details = append(details, d)
	}
	return details, rows.Err()
}

// =============================================================================
// EMPLOYEE STATUS
// =============================================================================

// EmployeeStatus is today's presence of one active employee.
type EmployeeStatus struct {
	Username  string
	StartDate calendar.Date
	EndDate   *calendar.Date
	Status    string // working | off | partial
}

// EmployeeStatuses returns every employee active on the given date with a
// derived status: "off" when a pending booking covers the date, "partial"
// when that booking's type is hour-denominated, otherwise "working".
func (s *Store) EmployeeStatuses(ctx context.Context, on calendar.Date) ([]EmployeeStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := on.String()
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.username, e.start_date, e.end_date,
			(SELECT COUNT(*) FROM bookings b
			 WHERE b.username = e.username AND b.pending = 1
			   AND (b.start_date = ? OR (b.start_date <= ? AND b.end_date >= ?))) AS on_holiday,
			(SELECT ht.hourly FROM bookings b
			 JOIN holiday_types ht ON b.type_id = ht.id
			 WHERE b.username = e.username AND b.pending = 1
			   AND (b.start_date = ? OR (b.start_date <= ? AND b.end_date >= ?))
			 LIMIT 1) AS hourly
		FROM employees e
		WHERE e.end_date IS NULL OR e.end_date >= ?
		ORDER BY e.username
	`, day, day, day, day, day, day, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []EmployeeStatus
	for rows.Next() {
		var st EmployeeStatus
		var start string
		var end sql.NullString
		var onHoliday int
		var hourly sql.NullBool
		if err := rows.Scan(&st.Username, &start, &end, &onHoliday, &hourly); err != nil {
			return nil, err
		}
		st.StartDate = scanDate(start)
		st.EndDate = scanNullDate(end)
		switch {
		case onHoliday > 0 && hourly.Valid && hourly.Bool:
			st.Status = "partial"
		case onHoliday > 0:
			st.Status = "off"
		default:
			st.Status = "working"
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func scanBooking(rows *sql.Rows) (calendar.Booking, error) {
	var b calendar.Booking
	var start string
	var end sql.NullString
	if err := rows.Scan(&b.ID, &b.Username, &start, &end, &b.TypeID, &b.Pending, &b.Year); err != nil {
		return b, err
	}
	b.Start = scanDate(start)
	b.End = scanNullDate(end)
	return b, nil
}

func bookingFromFields(id int64, f calendar.BookingFields) *calendar.Booking {
	return &calendar.Booking{
		ID:       id,
		Username: f.Username,
		Start:    f.Start,
		End:      f.End,
		TypeID:   f.TypeID,
		Pending:  f.Pending,
		Year:     f.Year,
	}
}
