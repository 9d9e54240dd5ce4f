/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request bodies carry go-playground/validator struct tags and are checked
  in decodeAndValidate before any handler logic runs. Date fields travel as
  YYYY-MM-DD strings and are parsed after structural validation.
*/
package api

import (
	"github.com/deskhub/team-portal/calendar"
	"github.com/deskhub/team-portal/health"
	"github.com/deskhub/team-portal/store/sqlite"
)

// =============================================================================
// CALENDAR TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	Username  string  `json:"username"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
}

// EmployeeRequest is the body for creating or updating an employee.
type EmployeeRequest struct {
	Username  string  `json:"username" validate:"required"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// HolidayTypeDTO represents a holiday type in API responses.
type HolidayTypeDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Hourly bool   `json:"hourly"`
}

// HolidayTypeRequest is the body for creating or updating a holiday type.
type HolidayTypeRequest struct {
	Name   string `json:"name" validate:"required"`
	Hourly bool   `json:"hourly"`
}

// AllowanceDTO represents an annual allowance in API responses.
type AllowanceDTO struct {
	ID       int64   `json:"id"`
	TypeID   int64   `json:"type_id"`
	TypeName string  `json:"type_name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"` // days | hours
	Year     int     `json:"year"`
}

// AllowanceRequest is the body for creating or updating an allowance.
type AllowanceRequest struct {
	TypeID   int64   `json:"type_id" validate:"required"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Year     int     `json:"year" validate:"required,min=2000,max=2200"`
}

// BookingDTO represents a holiday booking in API responses.
type BookingDTO struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	TypeID    int64   `json:"type_id"`
	TypeName  string  `json:"type_name,omitempty"`
	Pending   bool    `json:"pending"`
	Year      int     `json:"year"`
}

// CreateBookingRequest is the body for submitting a new booking.
type CreateBookingRequest struct {
	Username  string  `json:"username" validate:"required"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TypeID    int64   `json:"type_id" validate:"required"`
	Year      int     `json:"year" validate:"required,min=2000,max=2200"`
}

// UpdateBookingRequest is the body for editing an existing booking.
// Pending is optional; nil keeps the stored flag.
type UpdateBookingRequest struct {
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TypeID    int64   `json:"type_id" validate:"required"`
	Year      int     `json:"year" validate:"required,min=2000,max=2200"`
	Pending   *bool   `json:"pending,omitempty"`
}

// EmployeeStatusDTO is one row of the daily presence board.
type EmployeeStatusDTO struct {
	Username string `json:"username"`
	Status   string `json:"status"` // working | off | partial
}

// =============================================================================
// BOOKMARKS
// =============================================================================

// BookmarkDTO represents a catalog link in API responses.
type BookmarkDTO struct {
	ID               int64  `json:"id"`
	Category         string `json:"category"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description,omitempty"`
	Link             string `json:"link"`
	Icon             string `json:"icon,omitempty"`
}

// BookmarkRequest is the body for creating or updating a bookmark.
type BookmarkRequest struct {
	Category         string `json:"category" validate:"required"`
	ShortDescription string `json:"short_description" validate:"required"`
	LongDescription  string `json:"long_description"`
	Link             string `json:"link" validate:"required,url"`
	Icon             string `json:"icon"`
}

// =============================================================================
// HEALTH MONITOR
// =============================================================================

// ServerDTO represents a monitored server in API responses.
type ServerDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// ServerRequest is the body for registering or updating a server.
type ServerRequest struct {
	Name        string `json:"name" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description"`
}

// CheckResultDTO is the outcome of probing one server.
type CheckResultDTO struct {
	Server     ServerDTO `json:"server"`
	Healthy    bool      `json:"healthy"`
	StatusCode int       `json:"status_code,omitempty"`
	LatencyMS  int64     `json:"latency_ms"`
	Error      string    `json:"error,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// QuotaExceededResponse is the rejection body for bookings that would overrun
// the annual allowance.
type QuotaExceededResponse struct {
	Error     string  `json:"error"`
	UsedSpan  int     `json:"usedSpan"`
	NewSpan   int     `json:"newSpan"`
	Allowed   float64 `json:"allowed"`
	Remaining float64 `json:"remaining"`
	Unit      string  `json:"unit"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toEmployeeDTO(e calendar.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		Username:  e.Username,
		StartDate: e.StartDate.String(),
	}
	if e.EndDate != nil {
		s := e.EndDate.String()
		dto.EndDate = &s
	}
	return dto
}

func toHolidayTypeDTO(t calendar.HolidayType) HolidayTypeDTO {
	return HolidayTypeDTO{ID: t.ID, Name: t.Name, Hourly: t.Hourly}
}

func toAllowanceDTO(a sqlite.AllowanceDetail) AllowanceDTO {
	return AllowanceDTO{
		ID:       a.ID,
		TypeID:   a.TypeID,
		TypeName: a.TypeName,
		Quantity: a.Quantity.Float64(),
		Unit:     string(a.Quantity.Unit),
		Year:     a.Year,
	}
}

func toBookingDTO(b calendar.Booking, typeName string) BookingDTO {
	dto := BookingDTO{
		ID:        b.ID,
		Username:  b.Username,
		StartDate: b.Start.String(),
		TypeID:    b.TypeID,
		TypeName:  typeName,
		Pending:   b.Pending,
		Year:      b.Year,
	}
	if b.End != nil {
		s := b.End.String()
		dto.EndDate = &s
	}
	return dto
}

func toBookmarkDTO(b sqlite.Bookmark) BookmarkDTO {
	return BookmarkDTO{
		ID:               b.ID,
		Category:         b.Category,
		ShortDescription: b.ShortDescription,
		LongDescription:  b.LongDescription,
		Link:             b.Link,
		Icon:             b.Icon,
	}
}

func toServerDTO(s health.Server) ServerDTO {
	return ServerDTO{ID: s.ID, Name: s.Name, URL: s.URL, Description: s.Description}
}
