package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/deskhub/team-portal/health"
)

// ErrServerNotFound is returned when mutating a server that does not exist.
var ErrServerNotFound = errors.New("server not found")

// ErrDuplicateServerName is returned when inserting a server whose name is taken.
var ErrDuplicateServerName = errors.New("server name already registered")

// ListServers returns the monitored-server registry ordered by name.
// Satisfies health.ServerSource.
func (s *Store) ListServers(ctx context.Context) ([]health.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, url, description FROM servers ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []health.Server
	for rows.Next() {
		srv, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		servers = append(servers, srv)
	}
	return servers, rows.Err()
}

// FindServer retrieves one registry entry by id. Returns nil when absent.
func (s *Store) FindServer(ctx context.Context, id int64) (*health.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, url, description FROM servers WHERE id = ?", id)

	var srv health.Server
	var desc sql.NullString
	err := row.Scan(&srv.ID, &srv.Name, &srv.URL, &desc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	srv.Description = desc.String
	return &srv, nil
}

// InsertServer registers a server and returns it with its id.
func (s *Store) InsertServer(ctx context.Context, srv health.Server) (*health.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO servers (name, url, description)
		VALUES (?, ?, ?)
	`, srv.Name, srv.URL, srv.Description)
	if err != nil {
		if IsUniqueConstraint(err) {
			return nil, ErrDuplicateServerName
		}
		return nil, err
	}
	srv.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &srv, nil
}

// UpdateServer replaces a registry entry's fields.
func (s *Store) UpdateServer(ctx context.Context, srv health.Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE servers SET name = ?, url = ?, description = ? WHERE id = ?
	`, srv.Name, srv.URL, srv.Description, srv.ID)
	if err != nil {
		if IsUniqueConstraint(err) {
			return ErrDuplicateServerName
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrServerNotFound
	}
	return nil
}

// DeleteServer removes a registry entry.
func (s *Store) DeleteServer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM servers WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrServerNotFound
	}
	return nil
}

func scanServer(rows *sql.Rows) (health.Server, error) {
	var srv health.Server
	var desc sql.NullString
	if err := rows.Scan(&srv.ID, &srv.Name, &srv.URL, &desc); err != nil {
		return srv, err
	}
	srv.Description = desc.String
	return srv, nil
}
