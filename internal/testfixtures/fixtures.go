package testfixtures

import (
	"time"

	"github.com/example/liveclass-gateway/internal/persistence"
)

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so weekly-schedule tests can anchor to it.
func ReferenceTime() time.Time {
	return referenceTime
}

// BatchOption mutates a generated batch fixture.
type BatchOption func(*persistence.Batch)

// WithMeeting attaches a meeting lease to the batch.
func WithMeeting(meetingID, provider string) BatchOption {
	return func(b *persistence.Batch) {
		b.MeetingID = meetingID
		b.MeetingProvider = provider
	}
}

// WithBatchStatus overrides the batch lifecycle status.
func WithBatchStatus(status string) BatchOption {
	return func(b *persistence.Batch) {
		b.Status = status
	}
}

// WithRecurringDays overrides the batch's weekday pattern.
func WithRecurringDays(days ...string) BatchOption {
	return func(b *persistence.Batch) {
		b.RecurringDays = days
	}
}

// NewBatch returns a strict weekly batch record with the given id.
func NewBatch(id string, opts ...BatchOption) persistence.Batch {
	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	batch := persistence.Batch{
		ID:             id,
		TenantID:       "tenant-1",
		InstructorID:   "inst-1",
		Name:           "Algebra II",
		Status:         "active",
		StrictSchedule: true,
		StartDate:      &start,
		RecurringDays:  []string{"Monday", "Wednesday"},
		BatchTime:      "10:00 AM-11:00 AM",
		CreatedAt:      referenceTime,
		UpdatedAt:      referenceTime,
	}
	for _, opt := range opts {
		opt(&batch)
	}
	return batch
}

// SessionOption mutates a generated class session fixture.
type SessionOption func(*persistence.ClassSession)

// ForBatch assigns the session to a different batch.
func ForBatch(batchID string) SessionOption {
	return func(s *persistence.ClassSession) {
		s.BatchID = batchID
	}
}

// StartedAt shifts the session's actual window to the given start.
func StartedAt(start time.Time) SessionOption {
	return func(s *persistence.ClassSession) {
		duration := s.ActualEnd.Sub(s.ActualStart)
		s.ActualStart = start
		s.ActualEnd = start.Add(duration)
	}
}

// NewClassSession returns a completed session record keyed by the given
// local and remote identifiers.
func NewClassSession(id, remoteID string, opts ...SessionOption) persistence.ClassSession {
	start := referenceTime.Add(time.Hour)
	session := persistence.ClassSession{
		ID:                id,
		RemoteSessionID:   remoteID,
		BatchID:           "batch-1",
		TenantID:          "tenant-1",
		InstructorID:      "inst-1",
		ScheduledStart:    start,
		ScheduledEnd:      start.Add(time.Hour),
		ActualStart:       start,
		ActualEnd:         start.Add(55 * time.Minute),
		DurationSeconds:   3300,
		DurationMinutes:   55,
		Status:            "completed",
		ParticipantsCount: 18,
		Notes:             "Algebra II session on 2025-06-02",
		CreatedAt:         start.Add(2 * time.Hour),
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// NewAttendance returns a present-status attendance record for the given
// student and day.
func NewAttendance(id, studentID string, day time.Time) persistence.Attendance {
	return persistence.Attendance{
		ID:        id,
		StudentID: studentID,
		BatchID:   "batch-1",
		Date:      day,
		Status:    "present",
		CreatedAt: day.Add(10 * time.Hour),
	}
}
