// Package history records answered queries in a SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded query and its answer.
type Entry struct {
	ID       int64     `json:"id"`
	AskedAt  time.Time `json:"asked_at"`
	Query    string    `json:"query"`
	Tool     string    `json:"tool"`
	Response string    `json:"response"`
	Fallback bool      `json:"fallback"`
}

// DB wraps the history database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating parent
// directories as needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS queries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			asked_at INTEGER NOT NULL,
			query TEXT NOT NULL,
			tool TEXT NOT NULL,
			response TEXT NOT NULL,
			fallback INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_queries_asked_at ON queries(asked_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Record appends one entry. AskedAt defaults to now when zero.
func (d *DB) Record(e Entry) error {
	askedAt := e.AskedAt
	if askedAt.IsZero() {
		askedAt = time.Now()
	}

	fallback := 0
	if e.Fallback {
		fallback = 1
	}

	_, err := d.db.Exec(
		`INSERT INTO queries (asked_at, query, tool, response, fallback) VALUES (?, ?, ?, ?, ?)`,
		askedAt.Unix(), e.Query, e.Tool, e.Response, fallback,
	)
	if err != nil {
		return fmt.Errorf("recording query: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (d *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.Query(
		`SELECT id, asked_at, query, tool, response, fallback
		 FROM queries ORDER BY asked_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var askedAt int64
		var fallback int
		if err := rows.Scan(&e.ID, &askedAt, &e.Query, &e.Tool, &e.Response, &fallback); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.AskedAt = time.Unix(askedAt, 0)
		e.Fallback = fallback != 0
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the number of recorded entries.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM queries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}
