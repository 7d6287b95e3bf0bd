package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS repository (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	url        TEXT NOT NULL DEFAULT '',
	revision   INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS action_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	action     TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
`

// Repository is the tracked repository state.
type Repository struct {
	URL       string
	Revision  int
	UpdatedAt time.Time
}

// Action is one row of the action log.
type Action struct {
	ID        int64
	Action    string
	Detail    string
	CreatedAt time.Time
}

// Store persists repository state and the action log.
type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return NewStore(conn)
}

// NewStore wraps an open connection and creates the schema.
func NewStore(conn *sql.DB) (*Store, error) {
	s := &Store{conn: conn}
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	_, err := conn.Exec(`INSERT OR IGNORE INTO repository (id, url, revision, updated_at) VALUES (1, '', 0, ?)`, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("seed repository: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Repository returns the current repository row.
func (s *Store) Repository() (Repository, error) {
	var r Repository
	err := s.conn.QueryRow(`SELECT url, revision, updated_at FROM repository WHERE id = 1`).
		Scan(&r.URL, &r.Revision, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Repository{}, nil
	}
	if err != nil {
		return Repository{}, fmt.Errorf("get repository: %w", err)
	}
	return r, nil
}

// SetURL points the repository at url and resets its revision.
func (s *Store) SetURL(url string) error {
	_, err := s.conn.Exec(`UPDATE repository SET url = ?, revision = 0, updated_at = ? WHERE id = 1`, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set repository url: %w", err)
	}
	return nil
}

// BumpRevision advances the revision and returns the new value.
func (s *Store) BumpRevision() (int, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE repository SET revision = revision + 1, updated_at = ? WHERE id = 1`, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("bump revision: %w", err)
	}
	var rev int
	if err := tx.QueryRow(`SELECT revision FROM repository WHERE id = 1`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return rev, nil
}

// LogAction appends to the action log.
func (s *Store) LogAction(action, detail string) error {
	_, err := s.conn.Exec(`INSERT INTO action_log (action, detail, created_at) VALUES (?, ?, ?)`, action, detail, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("log action: %w", err)
	}
	return nil
}

// Actions returns the most recent log entries, newest first.
func (s *Store) Actions(limit int) ([]Action, error) {
	rows, err := s.conn.Query(`SELECT id, action, detail, created_at FROM action_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Action, &a.Detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// KnownURLs returns every URL the repository has been pointed at, most
// recent first, without duplicates.
func (s *Store) KnownURLs() ([]string, error) {
	rows, err := s.conn.Query(`SELECT detail FROM action_log WHERE action = ? AND detail != '' GROUP BY detail ORDER BY MAX(id) DESC`, ActionChange)
	if err != nil {
		return nil, fmt.Errorf("query urls: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
