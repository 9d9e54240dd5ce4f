/*
calendar.go - Work-calendar HTTP handlers

PURPOSE:
  REST surface over the calendar domain: employees, holiday types, annual
  allowances, bookings, and the daily presence board. Booking writes go
  through the admission ledger; everything else is plain CRUD on the store.

ENDPOINTS:
  GET/POST       /api/calendar/employees
  PUT/DELETE     /api/calendar/employees/{username}
  GET/POST       /api/calendar/types
  PUT/DELETE     /api/calendar/types/{id}
  GET/POST       /api/calendar/allowances       (?year=)
  PUT/DELETE     /api/calendar/allowances/{id}
  GET/POST       /api/calendar/bookings         (?username= ?type= ?year=)
  PUT/DELETE     /api/calendar/bookings/{id}
  GET            /api/calendar/status
*/
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/deskhub/team-portal/calendar"
	"github.com/deskhub/team-portal/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee adds an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	emp, ok := h.employeeFromRequest(w, req)
	if !ok {
		return
	}

	if err := h.Store.InsertEmployee(r.Context(), emp); err != nil {
		if sqlite.IsUniqueConstraint(err) {
			writeError(w, http.StatusConflict, "Username already exists", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// UpdateEmployee replaces an employee's dates. The username in the URL wins.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.Username = chi.URLParam(r, "username")

	emp, ok := h.employeeFromRequest(w, req)
	if !ok {
		return
	}

	if err := h.Store.UpdateEmployee(r.Context(), emp); err != nil {
		if errors.Is(err, calendar.ErrEmployeeNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee. Bookings referencing the username are
// left in place; historical usage stays queryable.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.Store.DeleteEmployee(r.Context(), username); err != nil {
		if errors.Is(err, calendar.ErrEmployeeNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) employeeFromRequest(w http.ResponseWriter, req EmployeeRequest) (calendar.Employee, bool) {
	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return calendar.Employee{}, false
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return calendar.Employee{}, false
	}
	if end != nil && end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must not precede start_date", nil)
		return calendar.Employee{}, false
	}
	return calendar.Employee{Username: req.Username, StartDate: start, EndDate: end}, true
}

// =============================================================================
// HOLIDAY TYPES
// =============================================================================

// ListHolidayTypes returns all holiday types.
func (h *Handler) ListHolidayTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListHolidayTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holiday types", err)
		return
	}

	dtos := make([]HolidayTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = toHolidayTypeDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHolidayType adds a holiday type.
func (h *Handler) CreateHolidayType(w http.ResponseWriter, r *http.Request) {
	var req HolidayTypeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	t, err := h.Store.InsertHolidayType(r.Context(), req.Name, req.Hourly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayTypeDTO(*t))
}

// UpdateHolidayType replaces a holiday type's fields.
func (h *Handler) UpdateHolidayType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req HolidayTypeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	t := calendar.HolidayType{ID: id, Name: req.Name, Hourly: req.Hourly}
	if err := h.Store.UpdateHolidayType(r.Context(), t); err != nil {
		if errors.Is(err, calendar.ErrHolidayTypeNotFound) {
			writeError(w, http.StatusNotFound, "Holiday type not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update holiday type", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayTypeDTO(t))
}

// DeleteHolidayType removes a holiday type.
func (h *Handler) DeleteHolidayType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteHolidayType(r.Context(), id); err != nil {
		if errors.Is(err, calendar.ErrHolidayTypeNotFound) {
			writeError(w, http.StatusNotFound, "Holiday type not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ALLOWANCES
// =============================================================================

// ListAllowances returns allowances, optionally filtered by ?year=.
func (h *Handler) ListAllowances(w http.ResponseWriter, r *http.Request) {
	year := 0
	if s := r.URL.Query().Get("year"); s != "" {
		var err error
		year, err = strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}

	allowances, err := h.Store.ListAllowances(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allowances", err)
		return
	}

	dtos := make([]AllowanceDTO, len(allowances))
	for i, a := range allowances {
		dtos[i] = toAllowanceDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAllowance configures an annual allowance for a holiday type.
func (h *Handler) CreateAllowance(w http.ResponseWriter, r *http.Request) {
	var req AllowanceRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	quantity, ok := h.allowanceQuantity(w, r, req)
	if !ok {
		return
	}

	a, err := h.Store.InsertAllowance(r.Context(), req.TypeID, quantity, req.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create allowance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAllowanceDTO(*a))
}

// UpdateAllowance replaces an allowance's fields.
func (h *Handler) UpdateAllowance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AllowanceRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	quantity, ok := h.allowanceQuantity(w, r, req)
	if !ok {
		return
	}

	a, err := h.Store.UpdateAllowance(r.Context(), id, req.TypeID, quantity, req.Year)
	if err != nil {
		if errors.Is(err, calendar.ErrAllowanceNotFound) {
			writeError(w, http.StatusNotFound, "Allowance not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update allowance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAllowanceDTO(*a))
}

// DeleteAllowance removes an allowance.
func (h *Handler) DeleteAllowance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteAllowance(r.Context(), id); err != nil {
		if errors.Is(err, calendar.ErrAllowanceNotFound) {
			writeError(w, http.StatusNotFound, "Allowance not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete allowance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// allowanceQuantity resolves the request quantity into an Amount denominated
// in the holiday type's unit.
func (h *Handler) allowanceQuantity(w http.ResponseWriter, r *http.Request, req AllowanceRequest) (calendar.Amount, bool) {
	typ, err := h.Store.FindHolidayType(r.Context(), req.TypeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load holiday type", err)
		return calendar.Amount{}, false
	}
	if typ == nil {
		writeError(w, http.StatusNotFound, "Holiday type not found", nil)
		return calendar.Amount{}, false
	}
	return calendar.NewAmount(req.Quantity, typ.QuotaUnit()), true
}

// =============================================================================
// BOOKINGS
// =============================================================================

// ListBookings returns bookings with their type, filtered by the optional
// ?username= ?type= ?year= query parameters.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := sqlite.BookingQuery{Username: r.URL.Query().Get("username")}
	if s := r.URL.Query().Get("type"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid type", err)
			return
		}
		q.TypeID = id
	}
	if s := r.URL.Query().Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		q.Year = year
	}

	details, err := h.Store.ListBookingDetails(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}

	dtos := make([]BookingDTO, len(details))
	for i, d := range details {
		dtos[i] = toBookingDTO(d.Booking, d.TypeName)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBooking submits a new booking through the admission ledger.
// New bookings always start pending.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	booking, err := h.Ledger.Propose(r.Context(), calendar.Proposal{
		Username: req.Username,
		Start:    start,
		End:      end,
		TypeID:   req.TypeID,
		Year:     req.Year,
	})
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(*booking, ""))
}

// UpdateBooking edits a booking through the admission ledger. The owner is
// immutable; a pending-flag-only edit skips the quota re-check.
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateBookingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	booking, err := h.Ledger.Propose(r.Context(), calendar.Proposal{
		BookingID: id,
		Start:     start,
		End:       end,
		TypeID:    req.TypeID,
		Year:      req.Year,
		Pending:   req.Pending,
	})
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(*booking, ""))
}

// DeleteBooking removes a booking, releasing its span back to the allowance.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteBooking(r.Context(), id); err != nil {
		if errors.Is(err, calendar.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "Booking not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete booking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STATUS BOARD
// =============================================================================

// GetStatus returns today's presence for every active employee.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Store.EmployeeStatuses(r.Context(), calendar.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute statuses", err)
		return
	}

	dtos := make([]EmployeeStatusDTO, len(statuses))
	for i, s := range statuses {
		dtos[i] = EmployeeStatusDTO{Username: s.Username, Status: s.Status}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}
