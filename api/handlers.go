/*
handlers.go - Handler context and shared HTTP plumbing

PURPOSE:
  Holds the dependencies every handler needs and the helpers shared across
  the calendar, bookmarks, and health endpoint files: JSON writing, request
  decoding with validation, and the mapping from domain errors to HTTP
  statuses.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid ranges, quota rejections
  - 404: Missing employee / type / allowance / booking
  - 409: Conflicts (duplicate server name, ambiguous allowance config)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - calendar.go, bookmarks.go, health.go: Endpoint implementations
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/deskhub/team-portal/calendar"
	"github.com/deskhub/team-portal/health"
	"github.com/deskhub/team-portal/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Ledger  *calendar.Ledger
	Monitor *health.Monitor
	Log     zerolog.Logger

	validate *validator.Validate
}

// NewHandler creates a handler over the given store and ledger.
func NewHandler(store *sqlite.Store, ledger *calendar.Ledger, monitor *health.Monitor, log zerolog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Ledger:   ledger,
		Monitor:  monitor,
		Log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// SHARED PLUMBING
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation. On failure it writes a 400 response and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// writeLedgerError maps a Propose rejection to an HTTP response. Quota
// rejections get the structured breakdown body; everything else is mapped
// through the domain error taxonomy.
func (h *Handler) writeLedgerError(w http.ResponseWriter, err error) {
	var exceeded *calendar.AllowanceExceededError
	if errors.As(err, &exceeded) {
		writeJSON(w, http.StatusBadRequest, QuotaExceededResponse{
			Error:     "allowance exceeded",
			UsedSpan:  exceeded.Used,
			NewSpan:   exceeded.New,
			Allowed:   exceeded.Allowed.Float64(),
			Remaining: exceeded.Remaining.Float64(),
			Unit:      string(exceeded.Allowed.Unit),
		})
		return
	}

	switch {
	case calendar.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Referenced record not found", err)
	case errors.Is(err, calendar.ErrDuplicateAllowance):
		writeError(w, http.StatusConflict, "Ambiguous allowance configuration", err)
	case calendar.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Booking rejected", err)
	default:
		h.Log.Error().Err(err).Msg("booking admission failed")
		writeError(w, http.StatusInternalServerError, "Failed to process booking", err)
	}
}

// parseOptionalDate parses an optional YYYY-MM-DD string. The validator has
// already checked the format, so parse errors only surface on zero values.
func parseOptionalDate(s *string) (*calendar.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
