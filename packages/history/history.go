// Package history provides a local sqlite log of executed requests.
// Recording is opt-in at the CLI layer; the request core itself stays
// stateless.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id          TEXT PRIMARY KEY,
	ts          INTEGER NOT NULL,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	status      INTEGER NOT NULL,
	success     INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
)`

// Entry is one recorded request execution.
type Entry struct {
	ID       string
	Time     time.Time
	Method   string
	URL      string
	Status   int
	Success  bool
	Duration time.Duration
}

// Store is a sqlite-backed request log.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens (or creates) the request log at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts an entry, assigning an ID and timestamp when unset.
func (s *Store) Record(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, ts, method, url, status, success, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.Unix(), e.Method, e.URL, e.Status, e.Success, e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, method, url, status, success, duration_ms FROM requests ORDER BY ts DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0, limit)
	for rows.Next() {
		var (
			e          Entry
			ts         int64
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Method, &e.URL, &e.Status, &e.Success, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Time = time.Unix(ts, 0)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Clear removes all recorded entries.
func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM requests`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
