// Package history keeps a SQLite ledger of pipeline runs: which story and
// world were combined, how far each run got, and why it stopped.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	story_key   TEXT NOT NULL,
	world_key   TEXT NOT NULL,
	state       TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	finished_at INTEGER
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at DESC);
`

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Run is one recorded pipeline run.
type Run struct {
	ID         string
	StoryKey   string
	WorldKey   string
	State      string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
}

// Store provides SQLite-backed persistence for run records.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Started records a new run in the initial state.
func (s *Store) Started(ctx context.Context, runID, storyKey, worldKey, state string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, story_key, world_key, state, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, storyKey, worldKey, state, StatusRunning, toMillis(s.now()))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Reached records the latest state a run completed.
func (s *Store) Reached(ctx context.Context, runID, state string) error {
	return s.update(ctx,
		`UPDATE runs SET state = ? WHERE id = ?`,
		state, runID)
}

// Finished closes a run. A nil runErr marks it complete.
func (s *Store) Finished(ctx context.Context, runID, state string, runErr error) error {
	status, message := StatusComplete, ""
	if runErr != nil {
		status, message = StatusFailed, runErr.Error()
	}
	return s.update(ctx,
		`UPDATE runs SET state = ?, status = ?, error = ?, finished_at = ? WHERE id = ?`,
		state, status, message, toMillis(s.now()), runID)
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, story_key, world_key, state, status, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  int64
			finishedAt sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.StoryKey, &r.WorldKey, &r.State, &r.Status, &r.Error, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = fromMillis(startedAt)
		if finishedAt.Valid {
			r.FinishedAt = fromMillis(finishedAt.Int64)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ErrUnknownRun is returned when updating a run that was never started.
var ErrUnknownRun = errors.New("unknown run")

func (s *Store) update(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n == 0 {
		return ErrUnknownRun
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
