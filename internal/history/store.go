// Package history persists generation run outcomes in SQLite for later
// inspection via the `refgen history` command.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RunRecord is one persisted generation run.
type RunRecord struct {
	RunID         string
	Started       time.Time
	Duration      time.Duration
	Succeeded     int
	Failed        int
	FailedModules []string
}

// Store is a SQLite-backed run-history store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		failed_modules TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun appends one run's outcome.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, started, duration_ms, succeeded, failed, failed_modules) VALUES (?, ?, ?, ?, ?, ?)",
		rec.RunID, rec.Started.Unix(), rec.Duration.Milliseconds(), rec.Succeeded, rec.Failed,
		strings.Join(rec.FailedModules, ","),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, started, duration_ms, succeeded, failed, failed_modules FROM runs ORDER BY started DESC, run_id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, durationMS int64
		var failedModules string
		if err := rows.Scan(&rec.RunID, &started, &durationMS, &rec.Succeeded, &rec.Failed, &failedModules); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Started = time.Unix(started, 0)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if failedModules != "" {
			rec.FailedModules = strings.Split(failedModules, ",")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
