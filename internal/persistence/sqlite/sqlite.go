// Package sqlite persists gateway state in SQLite via the pure-Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle shared by the repositories.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL DEFAULT '',
		instructor_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		strict_schedule INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT,
		recurring_days TEXT,
		batch_time TEXT NOT NULL DEFAULT '',
		meeting_id TEXT NOT NULL DEFAULT '',
		meeting_provider TEXT NOT NULL DEFAULT '',
		last_class_start_time TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS class_sessions (
		id TEXT PRIMARY KEY,
		remote_session_id TEXT NOT NULL UNIQUE,
		batch_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL DEFAULT '',
		instructor_id TEXT NOT NULL DEFAULT '',
		scheduled_start TEXT NOT NULL,
		scheduled_end TEXT NOT NULL,
		actual_start TEXT NOT NULL,
		actual_end TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		duration_minutes REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'completed',
		participants_count INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_class_sessions_batch ON class_sessions (batch_id)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		batch_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'present',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_student_day ON attendance (student_id, batch_id, date)`,
}

// Migrate applies the schema. Statements are idempotent, so repeated calls
// are safe.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTimePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
