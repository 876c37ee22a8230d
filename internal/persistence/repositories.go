package persistence

import (
	"context"
	"time"
)

// BatchRepository stores live-class batches.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch Batch) error
	SaveBatch(ctx context.Context, batch Batch) error
	GetBatch(ctx context.Context, id string) (Batch, error)
	ListBatchesWithMeeting(ctx context.Context) ([]Batch, error)
}

// ClassSessionRepository stores materialized session records.
type ClassSessionRepository interface {
	CreateSession(ctx context.Context, session ClassSession) error
	SessionExists(ctx context.Context, remoteSessionID string) (bool, error)
	ListSessionsForBatch(ctx context.Context, batchID string) ([]ClassSession, error)
}

// AttendanceRepository stores attendance evidence.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, record Attendance) error
	HasAttendanceForDay(ctx context.Context, studentID, batchID string, day time.Time) (bool, error)
}
