// Package trace is an optional sqlite-backed execution trace sink
// (--trace-db PATH), grounded on the sqlite3 wiring of
// babyman-slug-lang/internal/svc/sqlite/sqlite_service.go — minus its
// actor/message-passing scaffolding, which has no counterpart in this
// single-threaded interpreter; only the driver and the schema concern
// are carried over.
package trace

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Sink struct {
	db *sql.DB
}

// Open creates (or appends to) a sqlite database at path and ensures
// the trace table exists.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace db %q: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS trace_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	line INTEGER NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create trace schema: %w", err)
	}
	return &Sink{db: db}, nil
}

// Record appends one execution event (an executed statement, or a
// run_start/run_end bookend from the driver) to the trace table.
func (s *Sink) Record(line int, kind, detail string) error {
	_, err := s.db.Exec(
		`INSERT INTO trace_events (ts, line, kind, detail) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), line, kind, detail,
	)
	return err
}

func (s *Sink) Close() error { return s.db.Close() }
