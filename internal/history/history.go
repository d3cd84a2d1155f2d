// Package history keeps a local SQLite record of generated commit messages.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	log "github.com/chmouel/gaiacommit/internal/log"
)

// Entry is one generated message and what became of it.
type Entry struct {
	ID        uuid.UUID
	CreatedAt time.Time
	File      string
	Node      string
	Model     string
	Message   string
	Outcome   string
}

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	file       TEXT NOT NULL,
	node       TEXT NOT NULL,
	model      TEXT NOT NULL,
	message    TEXT NOT NULL,
	outcome    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_created_at ON messages (created_at);
`

// Store is a history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: configure %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migrate %s: %w", path, err)
	}
	log.Printf("history: opened %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Record stores e, filling ID and CreatedAt when unset, and returns what was stored.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, created_at, file, node, model, message, outcome) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.CreatedAt.Format(timeLayout), e.File, e.Node, e.Model, e.Message, e.Outcome,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("history: record: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, file, node, model, message, outcome FROM messages
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			id, stamp string
		)
		if err := rows.Scan(&id, &stamp, &e.File, &e.Node, &e.Model, &e.Message, &e.Outcome); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("history: bad id %q: %w", id, err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, stamp); err != nil {
			return nil, fmt.Errorf("history: bad timestamp %q: %w", stamp, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return entries, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
