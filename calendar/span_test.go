package calendar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhub/team-portal/calendar"
)

func date(y int, m time.Month, d int) calendar.Date {
	return calendar.NewDate(y, m, d)
}

func datePtr(y int, m time.Month, d int) *calendar.Date {
	v := date(y, m, d)
	return &v
}

// =============================================================================
// DAY-SPAN CALCULATOR
// =============================================================================

func TestSpanDays_NoEndDate_SingleDay(t *testing.T) {
	span, err := calendar.SpanDays(date(2024, time.July, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, span)
}

func TestSpanDays_SameDayEnd_SingleDay(t *testing.T) {
	span, err := calendar.SpanDays(date(2024, time.March, 1), datePtr(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, span)
}

func TestSpanDays_Inclusive(t *testing.T) {
	span, err := calendar.SpanDays(date(2024, time.March, 1), datePtr(2024, time.March, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, span)
}

func TestSpanDays_AcrossLeapDay(t *testing.T) {
	// 2024 is a leap year: Feb 28, Feb 29, Mar 1.
	span, err := calendar.SpanDays(date(2024, time.February, 28), datePtr(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, span)
}

func TestSpanDays_AcrossYearBoundary(t *testing.T) {
	span, err := calendar.SpanDays(date(2024, time.December, 30), datePtr(2025, time.January, 2))
	require.NoError(t, err)
	assert.Equal(t, 4, span)
}

func TestSpanDays_EndBeforeStart_InvalidRange(t *testing.T) {
	_, err := calendar.SpanDays(date(2024, time.March, 5), datePtr(2024, time.March, 1))

	assert.ErrorIs(t, err, calendar.ErrInvalidRange)
	var rangeErr *calendar.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, date(2024, time.March, 5), rangeErr.Start)
	assert.Equal(t, date(2024, time.March, 1), rangeErr.End)
}

// =============================================================================
// USAGE AGGREGATOR
// =============================================================================

func TestUsedDays_SumsIndividualSpans(t *testing.T) {
	bookings := []calendar.Booking{
		{ID: 1, Start: date(2024, time.March, 1), End: datePtr(2024, time.March, 5)}, // 5
		{ID: 2, Start: date(2024, time.April, 10)},                                   // 1
		{ID: 3, Start: date(2024, time.May, 1), End: datePtr(2024, time.May, 3)},     // 3
	}

	used, err := calendar.UsedDays(bookings, 0)
	require.NoError(t, err)
	assert.Equal(t, 9, used)
}

func TestUsedDays_ExcludingID_RemovesExactlyItsContribution(t *testing.T) {
	bookings := []calendar.Booking{
		{ID: 1, Start: date(2024, time.March, 1), End: datePtr(2024, time.March, 5)},
		{ID: 2, Start: date(2024, time.April, 10)},
	}

	all, err := calendar.UsedDays(bookings, 0)
	require.NoError(t, err)
	without, err := calendar.UsedDays(bookings, 1)
	require.NoError(t, err)

	assert.Equal(t, 6, all)
	assert.Equal(t, 1, without)
}

func TestUsedDays_Empty_Zero(t *testing.T) {
	used, err := calendar.UsedDays(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	// A wall-clock 23:00 start against a 01:00 end must still count whole
	// calendar days.
	a := calendar.Date{Time: time.Date(2024, time.March, 1, 23, 0, 0, 0, time.Local)}
	b := calendar.Date{Time: time.Date(2024, time.March, 3, 1, 0, 0, 0, time.UTC)}

	assert.Equal(t, 2, calendar.DaysBetween(a, b))
}

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := calendar.ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", d.String())

	_, err = calendar.ParseDate("03/05/2024")
	assert.Error(t, err)
}

func TestParseAmount_MalformedValueIsError(t *testing.T) {
	// A corrupt stored quantity must surface, never read as a zero quota.
	a, err := calendar.ParseAmount("12.5", calendar.UnitHours)
	require.NoError(t, err)
	assert.Equal(t, 12.5, a.Float64())

	_, err = calendar.ParseAmount("twelve", calendar.UnitDays)
	assert.Error(t, err)
}

func TestSpanDays_ErrorIsClientError(t *testing.T) {
	_, err := calendar.SpanDays(date(2024, time.March, 5), datePtr(2024, time.March, 1))
	assert.True(t, calendar.IsClientError(err))
	assert.False(t, calendar.IsNotFound(err))
	assert.False(t, errors.Is(err, calendar.ErrAllowanceExceeded))
}
