/*
Package sqlite provides the SQLite-backed persistence layer for the portal:
the calendar.Store contract plus the bookmarks catalog and the health
monitor's server registry.

TABLES:
  employees:      work-calendar employees (username is the primary key)
  holiday_types:  whole-day vs hour-denominated holiday kinds
  allowances:     per-type annual quotas (quantity stored as decimal text)
  bookings:       per-employee holiday reservations
  bookmarks:      categorized links
  servers:        monitored server registry

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode. The booking
  admission sequence itself is serialized by calendar.Ledger; the store
  only guarantees individual statements are consistent.

MIGRATION:
  Schema is auto-migrated on New(). Dates are stored as ISO text
  (YYYY-MM-DD) so SQLite range comparisons work lexicographically.
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/deskhub/team-portal/calendar"
)

// Store implements calendar.Store and the bookmark/server registries.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	// Foreign keys stay unenforced: deleting an employee or holiday type
	// must succeed even while bookings reference it, leaving historical
	// usage queryable.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A second pooled connection to ":memory:" would open a separate empty
	// database. One connection is plenty behind the store mutex.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		username TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT
	);

	CREATE TABLE IF NOT EXISTS holiday_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		hourly INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS allowances (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type_id INTEGER NOT NULL,
		quantity TEXT NOT NULL,
		year INTEGER NOT NULL,
		FOREIGN KEY (type_id) REFERENCES holiday_types(id)
	);

	CREATE INDEX IF NOT EXISTS idx_allowances_type_year
		ON allowances(type_id, year);

	CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		type_id INTEGER NOT NULL,
		pending INTEGER NOT NULL DEFAULT 1,
		accounting_year INTEGER NOT NULL,
		FOREIGN KEY (username) REFERENCES employees(username),
		FOREIGN KEY (type_id) REFERENCES holiday_types(id)
	);

	-- Usage aggregation hot path: all bookings for one admission key
	CREATE INDEX IF NOT EXISTS idx_bookings_key
		ON bookings(username, type_id, accounting_year);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		short_description TEXT NOT NULL,
		long_description TEXT,
		link TEXT NOT NULL,
		icon TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_bookmarks_category
		ON bookmarks(category);

	CREATE TABLE IF NOT EXISTS servers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		description TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d *calendar.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func scanDate(s string) calendar.Date {
	d, _ := calendar.ParseDate(s)
	return d
}

func scanNullDate(ns sql.NullString) *calendar.Date {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d := scanDate(ns.String)
	return &d
}

// IsUniqueConstraint reports whether err is a SQLite uniqueness violation
// (e.g. duplicate server name or employee username).
func IsUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
