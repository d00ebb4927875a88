// Package history keeps a local SQLite log of distribution runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"
)

// Run is one recorded pipeline run.
type Run struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Mode     string // move|archive
	Outcome  string // success|warning|failed
	Output   string // distribution path or archive file
	Revision string
	Error    string
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, run Run) error
}

// NoopRecorder discards runs (history disabled).
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, Run) error { return nil }

// DefaultPath returns the history database location under the XDG state directory.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "distbuilder", "history.db")
}

// SQLiteStore implements Recorder using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the history database at dbPath.
// Use ":memory:" for an in-memory database.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		mode TEXT NOT NULL,
		outcome TEXT NOT NULL,
		output TEXT,
		revision TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends run to the history.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, started, duration_ms, mode, outcome, output, revision, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.RunID, run.Started.UnixMilli(), run.Duration.Milliseconds(), run.Mode, run.Outcome, run.Output, run.Revision, run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, started, duration_ms, mode, outcome, output, revision, error FROM runs ORDER BY started DESC, id DESC LIMIT ?",
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, durationMS int64
		var output, revision, errText sql.NullString
		if err := rows.Scan(&r.RunID, &started, &durationMS, &r.Mode, &r.Outcome, &output, &revision, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Started = time.UnixMilli(started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Output = output.String
		r.Revision = revision.String
		r.Error = errText.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
