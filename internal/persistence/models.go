package persistence

import "time"

// Batch is the stored form of a schedulable live-class unit.
type Batch struct {
	ID           string
	TenantID     string
	InstructorID string
	Name         string
	Status       string

	StrictSchedule bool
	StartDate      *time.Time
	EndDate        *time.Time
	RecurringDays  []string
	BatchTime      string

	MeetingID       string
	MeetingProvider string

	LastClassStartTime *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClassSession is a materialized historical class occurrence. The remote
// session identifier carries a uniqueness constraint; it is the sweep's
// idempotency key.
type ClassSession struct {
	ID              string
	RemoteSessionID string
	BatchID         string
	TenantID        string
	InstructorID    string

	ScheduledStart time.Time
	ScheduledEnd   time.Time
	ActualStart    time.Time
	ActualEnd      time.Time

	DurationSeconds   int
	DurationMinutes   float64
	Status            string
	ParticipantsCount int
	Notes             string

	CreatedAt time.Time
}

// Attendance records that a student was admitted to a class on a given day.
type Attendance struct {
	ID        string
	StudentID string
	BatchID   string
	Date      time.Time
	Status    string
	CreatedAt time.Time
}
