package sqlite

import (
	"context"
	"database/sql"
	"errors"
)

// ErrBookmarkNotFound is returned when updating or deleting a nonexistent bookmark.
var ErrBookmarkNotFound = errors.New("bookmark not found")

// Bookmark is a categorized link in the portal catalog.
type Bookmark struct {
	ID               int64
	Category         string
	ShortDescription string
	LongDescription  string
	Link             string
	Icon             string
}

const bookmarkColumns = "id, category, short_description, long_description, link, icon"

// ListBookmarks returns all bookmarks, optionally filtered by category.
func (s *Store) ListBookmarks(ctx context.Context, category string) ([]Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + bookmarkColumns + " FROM bookmarks"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY category, short_description"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// ListCategories returns the distinct bookmark categories.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM bookmarks ORDER BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FindBookmark retrieves a bookmark by id. Returns nil when absent.
func (s *Store) FindBookmark(ctx context.Context, id int64) (*Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE id = ?", id)

	var b Bookmark
	var long, icon sql.NullString
	err := row.Scan(&b.ID, &b.Category, &b.ShortDescription, &long, &b.Link, &icon)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.LongDescription = long.String
	b.Icon = icon.String
	return &b, nil
}

// InsertBookmark creates a bookmark and returns it with its id.
func (s *Store) InsertBookmark(ctx context.Context, b Bookmark) (*Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (category, short_description, long_description, link, icon)
		VALUES (?, ?, ?, ?, ?)
	`, b.Category, b.ShortDescription, b.LongDescription, b.Link, b.Icon)
	if err != nil {
		return nil, err
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBookmark replaces a bookmark's fields.
func (s *Store) UpdateBookmark(ctx context.Context, b Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookmarks
		SET category = ?, short_description = ?, long_description = ?, link = ?, icon = ?
		WHERE id = ?
	`, b.Category, b.ShortDescription, b.LongDescription, b.Link, b.Icon, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

// DeleteBookmark removes a bookmark.
func (s *Store) DeleteBookmark(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

// CountBookmarks returns the number of stored bookmarks (used by seeding).
func (s *Store) CountBookmarks(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookmarks").Scan(&count)
	return count, err
}

func scanBookmark(rows *sql.Rows) (Bookmark, error) {
	var b Bookmark
	var long, icon sql.NullString
	if err := rows.Scan(&b.ID, &b.Category, &b.ShortDescription, &long, &b.Link, &icon); err != nil {
		return b, err
	}
	b.LongDescription = long.String
	b.Icon = icon.String
	return b, nil
}
