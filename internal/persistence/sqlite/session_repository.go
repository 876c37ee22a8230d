package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/liveclass-gateway/internal/persistence"
)

const sessionColumns = `id, remote_session_id, batch_id, tenant_id, instructor_id,
	scheduled_start, scheduled_end, actual_start, actual_end,
	duration_seconds, duration_minutes, status, participants_count, notes, created_at`

// CreateSession inserts a materialized session record. A second record for
// the same remote session id fails with ErrDuplicate.
func (s *Store) CreateSession(ctx context.Context, session persistence.ClassSession) error {
	if session.ID == "" || session.RemoteSessionID == "" {
		return fmt.Errorf("sqlite: session id and remote session id are required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO class_sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.RemoteSessionID,
		session.BatchID,
		session.TenantID,
		session.InstructorID,
		formatTime(session.ScheduledStart),
		formatTime(session.ScheduledEnd),
		formatTime(session.ActualStart),
		formatTime(session.ActualEnd),
		session.DurationSeconds,
		session.DurationMinutes,
		session.Status,
		session.ParticipantsCount,
		session.Notes,
		formatTime(session.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SessionExists reports whether a session with the remote id is already
// materialized.
func (s *Store) SessionExists(ctx context.Context, remoteSessionID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM class_sessions WHERE remote_session_id = ?`, remoteSessionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count sessions: %w", err)
	}
	return count > 0, nil
}

// ListSessionsForBatch returns a batch's materialized sessions, most recent
// first.
func (s *Store) ListSessionsForBatch(ctx context.Context, batchID string) ([]persistence.ClassSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM class_sessions WHERE batch_id = ? ORDER BY actual_start DESC`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []persistence.ClassSession
	for rows.Next() {
		var (
			session        persistence.ClassSession
			scheduledStart string
			scheduledEnd   string
			actualStart    string
			actualEnd      string
			createdAt      string
		)
		err := rows.Scan(
			&session.ID,
			&session.RemoteSessionID,
			&session.BatchID,
			&session.TenantID,
			&session.InstructorID,
			&scheduledStart,
			&scheduledEnd,
			&actualStart,
			&actualEnd,
			&session.DurationSeconds,
			&session.DurationMinutes,
			&session.Status,
			&session.ParticipantsCount,
			&session.Notes,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}
		if session.ScheduledStart, err = parseTime(scheduledStart); err != nil {
			return nil, fmt.Errorf("parse scheduled_start: %w", err)
		}
		if session.ScheduledEnd, err = parseTime(scheduledEnd); err != nil {
			return nil, fmt.Errorf("parse scheduled_end: %w", err)
		}
		if session.ActualStart, err = parseTime(actualStart); err != nil {
			return nil, fmt.Errorf("parse actual_start: %w", err)
		}
		if session.ActualEnd, err = parseTime(actualEnd); err != nil {
			return nil, fmt.Errorf("parse actual_end: %w", err)
		}
		if session.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
