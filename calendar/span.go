package calendar

// =============================================================================
// DAY-SPAN CALCULATOR
// =============================================================================

// SpanDays converts a (start, optional end) pair into an inclusive day count.
//
// A missing end date means a single-day booking. Otherwise the count is the
// whole-day difference plus one, so 2024-03-01..2024-03-05 spans 5 days.
// Dates are pure calendar dates, so the subtraction can never pick up a
// daylight-saving or timezone artifact.
func SpanDays(start Date, end *Date) (int, error) {
	if end == nil {
		return 1, nil
	}
	if end.Before(start) {
		return 0, &InvalidRangeError{Start: start, End: *end}
	}
	return DaysBetween(start, *end) + 1, nil
}

// UsedDays sums the spans of the given bookings, excluding the booking with
// id excludeID (0 = exclude nothing). Callers pass bookings already filtered
// to a single (employee, type, accounting year) key; this is pure aggregation.
func UsedDays(bookings []Booking, excludeID int64) (int, error) {
	total := 0
	for _, b := range bookings {
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		span, err := SpanDays(b.Start, b.End)
		if err != nil {
			return 0, err
		}
		total += span
	}
	return total, nil
}
