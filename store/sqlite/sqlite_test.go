package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhub/team-portal/calendar"
	"github.com/deskhub/team-portal/health"
	"github.com/deskhub/team-portal/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y int, m time.Month, d int) calendar.Date {
	return calendar.NewDate(y, m, d)
}

func datePtr(y int, m time.Month, d int) *calendar.Date {
	v := date(y, m, d)
	return &v
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.InsertEmployee(ctx, calendar.Employee{
		Username:  "alice",
		StartDate: date(2020, time.January, 15),
	})
	require.NoError(t, err)

	emp, err := store.FindEmployee(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, "2020-01-15", emp.StartDate.String())
	assert.Nil(t, emp.EndDate)

	// Absent lookup returns nil, nil
	missing, err := store.FindEmployee(ctx, "mallory")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Set a leaving date
	err = store.UpdateEmployee(ctx, calendar.Employee{
		Username:  "alice",
		StartDate: date(2020, time.January, 15),
		EndDate:   datePtr(2026, time.June, 30),
	})
	require.NoError(t, err)

	emp, err = store.FindEmployee(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, emp.EndDate)
	assert.Equal(t, "2026-06-30", emp.EndDate.String())

	require.NoError(t, store.DeleteEmployee(ctx, "alice"))
	err = store.DeleteEmployee(ctx, "alice")
	assert.ErrorIs(t, err, calendar.ErrEmployeeNotFound)
}

func TestDeleteEmployee_LeavesBookingsQueryable(t *testing.T) {
	// Deletion is not cascade-protected: the employee row goes away while
	// their bookings stay behind for historical usage queries.
	store := newTestStore(t)
	ctx := context.Background()
	typ := seedBookingFixtures(t, store)

	b, err := store.InsertBooking(ctx, calendar.BookingFields{
		Username: "alice",
		Start:    date(2024, time.March, 1),
		End:      datePtr(2024, time.March, 5),
		TypeID:   typ.ID,
		Year:     2024,
		Pending:  true,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteEmployee(ctx, "alice"))

	remaining, err := store.ListBookings(ctx, calendar.BookingFilter{Username: "alice"})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, b.ID, remaining[0].ID)
}

func TestDeleteHolidayType_LeavesAllowances(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	typ, err := store.InsertHolidayType(ctx, "Vacation", false)
	require.NoError(t, err)
	_, err = store.InsertAllowance(ctx, typ.ID,
		calendar.NewAmountFromInt(22, calendar.UnitDays), 2024)
	require.NoError(t, err)

	assert.NoError(t, store.DeleteHolidayType(ctx, typ.ID))
}

func TestInsertEmployee_DuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e := calendar.Employee{Username: "alice", StartDate: date(2020, time.January, 1)}
	require.NoError(t, store.InsertEmployee(ctx, e))

	err := store.InsertEmployee(ctx, e)
	require.Error(t, err)
	assert.True(t, sqlite.IsUniqueConstraint(err))
}

// =============================================================================
// HOLIDAY TYPES AND ALLOWANCES
// =============================================================================

func TestAllowances_RoundTripDecimalQuantity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	typ, err := store.InsertHolidayType(ctx, "Doctor visit", true)
	require.NoError(t, err)
	assert.True(t, typ.Hourly)

	// Fractional hours survive storage exactly
	quantity, err := calendar.ParseAmount("12.5", calendar.UnitHours)
	require.NoError(t, err)
	a, err := store.InsertAllowance(ctx, typ.ID, quantity, 2024)
	require.NoError(t, err)
	assert.Equal(t, "Doctor visit", a.TypeName)

	rows, err := store.FindAllowances(ctx, typ.ID, 2024)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 12.5, rows[0].Quantity.Float64())
	assert.Equal(t, calendar.UnitHours, rows[0].Quantity.Unit)

	// Wrong year finds nothing
	rows, err = store.FindAllowances(ctx, typ.ID, 2025)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListAllowances_YearFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	typ, err := store.InsertHolidayType(ctx, "Vacation", false)
	require.NoError(t, err)

	for _, year := range []int{2023, 2024} {
		_, err := store.InsertAllowance(ctx, typ.ID,
			calendar.NewAmountFromInt(22, calendar.UnitDays), year)
		require.NoError(t, err)
	}

	all, err := store.ListAllowances(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := store.ListAllowances(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, 2024, one[0].Year)
}

// =============================================================================
// BOOKINGS
// =============================================================================

func seedBookingFixtures(t *testing.T, store *sqlite.Store) calendar.HolidayType {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.InsertEmployee(ctx, calendar.Employee{
		Username: "alice", StartDate: date(2020, time.January, 1),
	}))
	require.NoError(t, store.InsertEmployee(ctx, calendar.Employee{
		Username: "bob", StartDate: date(2021, time.January, 1),
	}))
	typ, err := store.InsertHolidayType(ctx, "Vacation", false)
	require.NoError(t, err)
	return *typ
}

func TestBookings_InsertListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	typ := seedBookingFixtures(t, store)

	b1, err := store.InsertBooking(ctx, calendar.BookingFields{
		Username: "alice",
		Start:    date(2024, time.March, 1),
		End:      datePtr(2024, time.March, 5),
		TypeID:   typ.ID,
		Year:     2024,
		Pending:  true,
	})
	require.NoError(t, err)

	_, err = store.InsertBooking(ctx, calendar.BookingFields{
		Username: "bob",
		Start:    date(2024, time.April, 1),
		TypeID:   typ.ID,
		Year:     2024,
		Pending:  true,
	})
	require.NoError(t, err)

	alice, err := store.ListBookings(ctx, calendar.BookingFilter{
		Username: "alice", TypeID: typ.ID, Year: 2024,
	})
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, b1.ID, alice[0].ID)
	require.NotNil(t, alice[0].End)
	assert.Equal(t, "2024-03-05", alice[0].End.String())

	excluded, err := store.ListBookings(ctx, calendar.BookingFilter{
		Username: "alice", TypeID: typ.ID, Year: 2024, ExcludeID: b1.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, excluded)
}

func TestBookings_UpdateKeepsOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	typ := seedBookingFixtures(t, store)

	b, err := store.InsertBooking(ctx, calendar.BookingFields{
		Username: "alice",
		Start:    date(2024, time.March, 1),
		TypeID:   typ.ID,
		Year:     2024,
		Pending:  true,
	})
	require.NoError(t, err)

	updated, err := store.UpdateBooking(ctx, b.ID, calendar.BookingFields{
		Username: "bob", // must be ignored
		Start:    date(2024, time.May, 2),
		TypeID:   typ.ID,
		Year:     2024,
		Pending:  false,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "2024-05-02", updated.Start.String())
	assert.False(t, updated.Pending)

	_, err = store.UpdateBooking(ctx, 9999, calendar.BookingFields{
		Username: "alice", Start: date(2024, time.May, 2), TypeID: typ.ID, Year: 2024,
	})
	assert.ErrorIs(t, err, calendar.ErrBookingNotFound)
}

func TestListBookingDetails_JoinsTypeName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	typ := seedBookingFixtures(t, store)

	_, err := store.InsertBooking(ctx, calendar.BookingFields{
		Username: "alice",
		Start:    date(2024, time.March, 1),
		TypeID:   typ.ID,
		Year:     2024,
		Pending:  true,
	})
	require.NoError(t, err)

	details, err := store.ListBookingDetails(ctx, sqlite.BookingQuery{Username: "alice"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Vacation", details[0].TypeName)
	assert.False(t, details[0].Hourly)
}

// =============================================================================
// EMPLOYEE STATUS
// =============================================================================

func TestEmployeeStatuses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertEmployee(ctx, calendar.Employee{
		Username: "working", StartDate: date(2020, time.January, 1),
	}))
	require.NoError(t, store.InsertEmployee(ctx, calendar.Employee{
		Username: "off", StartDate: date(2020, time.January, 1),
	}))
	require.NoError(t, store.InsertEmployee(ctx, calendar.Employee{
		Username: "partial", StartDate: date(2020, time.January, 1),
	}))
	require.NoError(t, store.InsertEmployee(ctx, calendar.Employee{
		Username: "gone",
		StartDate: date(2020, time.January, 1),
		EndDate:   datePtr(2023, time.December, 31),
	}))

	vacation, err := store.InsertHolidayType(ctx, "Vacation", false)
	require.NoError(t, err)
	visit, err := store.InsertHolidayType(ctx, "Doctor visit", true)
	require.NoError(t, err)

	day := date(2024, time.June, 12)

	_, err = store.InsertBooking(ctx, calendar.BookingFields{
		Username: "off",
		Start:    date(2024, time.June, 10),
		End:      datePtr(2024, time.June, 14),
		TypeID:   vacation.ID,
		Year:     2024,
		Pending:  true,
	})
	require.NoError(t, err)

	_, err = store.InsertBooking(ctx, calendar.BookingFields{
		Username: "partial",
		Start:    day,
		TypeID:   visit.ID,
		Year:     2024,
		Pending:  true,
	})
	require.NoError(t, err)

	statuses, err := store.EmployeeStatuses(ctx, day)
	require.NoError(t, err)

	byName := map[string]string{}
	for _, s := range statuses {
		byName[s.Username] = s.Status
	}
	assert.Equal(t, "working", byName["working"])
	assert.Equal(t, "off", byName["off"])
	assert.Equal(t, "partial", byName["partial"])
	// Left employees don't appear on the board
	assert.NotContains(t, byName, "gone")
}

// =============================================================================
// BOOKMARKS
// =============================================================================

func TestBookmarks_CRUDAndCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	wiki, err := store.InsertBookmark(ctx, sqlite.Bookmark{
		Category:         "docs",
		ShortDescription: "Team wiki",
		Link:             "https://wiki.example.com",
	})
	require.NoError(t, err)
	_, err = store.InsertBookmark(ctx, sqlite.Bookmark{
		Category:         "tools",
		ShortDescription: "CI dashboard",
		Link:             "https://ci.example.com",
		Icon:             "ci.png",
	})
	require.NoError(t, err)

	all, err := store.ListBookmarks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	docs, err := store.ListBookmarks(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Team wiki", docs[0].ShortDescription)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "tools"}, categories)

	wiki.LongDescription = "Internal documentation"
	require.NoError(t, store.UpdateBookmark(ctx, *wiki))

	found, err := store.FindBookmark(ctx, wiki.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Internal documentation", found.LongDescription)

	require.NoError(t, store.DeleteBookmark(ctx, wiki.ID))
	err = store.DeleteBookmark(ctx, wiki.ID)
	assert.ErrorIs(t, err, sqlite.ErrBookmarkNotFound)
}

// =============================================================================
// SERVER REGISTRY
// =============================================================================

func TestServers_RegistryAndUniqueName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	srv, err := store.InsertServer(ctx, health.Server{
		Name: "build-box",
		URL:  "http://build.internal:8080",
	})
	require.NoError(t, err)
	assert.NotZero(t, srv.ID)

	_, err = store.InsertServer(ctx, health.Server{
		Name: "build-box",
		URL:  "http://elsewhere.internal",
	})
	assert.ErrorIs(t, err, sqlite.ErrDuplicateServerName)

	servers, err := store.ListServers(ctx)
	require.NoError(t, err)
	require.Len(t, servers, 1)

	srv.Description = "CI runner"
	require.NoError(t, store.UpdateServer(ctx, *srv))

	found, err := store.FindServer(ctx, srv.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "CI runner", found.Description)

	require.NoError(t, store.DeleteServer(ctx, srv.ID))
	assert.ErrorIs(t, store.DeleteServer(ctx, srv.ID), sqlite.ErrServerNotFound)
}
