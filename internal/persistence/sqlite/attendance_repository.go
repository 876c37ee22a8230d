package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/liveclass-gateway/internal/persistence"
)

// CreateAttendance inserts an attendance record. Multiple records for the
// same student and day are allowed; daily dedupe is a service-level policy.
func (s *Store) CreateAttendance(ctx context.Context, record persistence.Attendance) error {
	if record.ID == "" {
		return fmt.Errorf("sqlite: attendance id is required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (id, student_id, batch_id, date, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.StudentID,
		record.BatchID,
		formatDay(record.Date),
		record.Status,
		formatTime(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// HasAttendanceForDay reports whether the student already has a record for
// the batch on the given day.
func (s *Store) HasAttendanceForDay(ctx context.Context, studentID, batchID string, day time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM attendance WHERE student_id = ? AND batch_id = ? AND date = ?`,
		studentID, batchID, formatDay(day)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count attendance: %w", err)
	}
	return count > 0, nil
}

// formatDay stores attendance dates at calendar-day precision, in the
// day's own zone, so same-day lookups match regardless of clock time.
func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
