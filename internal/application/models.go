package application

import (
	"context"
	"strings"
	"time"
)

// Role identifies the kind of actor making an admission request.
type Role string

const (
	RoleStudent     Role = "student"
	RoleInstructor  Role = "instructor"
	RoleTenantAdmin Role = "tenant_admin"
	RoleTenant      Role = "tenant"
	RoleSuperadmin  Role = "superadmin"
)

// startRoles lists roles allowed to open a class session. Students are the
// only actors excluded from starting.
var startRoles = map[Role]bool{
	RoleInstructor:  true,
	RoleTenantAdmin: true,
	RoleTenant:      true,
	RoleSuperadmin:  true,
}

// hostRoles lists roles issued a host-level preset when joining an already
// running session.
var hostRoles = map[Role]bool{
	RoleInstructor:  true,
	RoleTenantAdmin: true,
}

// ParseRole normalises a transport-level role string to a known Role.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleStudent, RoleInstructor, RoleTenantAdmin, RoleTenant, RoleSuperadmin:
		return role, true
	}
	return "", false
}

// CanStartClass reports whether the role may open a session.
func (r Role) CanStartClass() bool { return startRoles[r] }

// HostPrivileges reports whether the role joins with a host-level preset.
func (r Role) HostPrivileges() bool { return hostRoles[r] }

// Caller is the authenticated actor behind a request. Authentication itself
// happens upstream; the transport layer extracts these fields verbatim.
type Caller struct {
	ID    string
	Email string
	Role  Role
}

// BatchStatus is the lifecycle state of a batch.
type BatchStatus string

const (
	BatchActive    BatchStatus = "active"
	BatchInactive  BatchStatus = "inactive"
	BatchCompleted BatchStatus = "completed"
)

// MeetingRef binds a batch to a meeting instance on the remote provider.
// Provider identifies which platform issued the meeting; a reference whose
// Provider differs from the configured one is stale and must be replaced.
type MeetingRef struct {
	MeetingID string
	Provider  string
}

// Valid reports whether the reference can be reused against the named
// provider.
func (m MeetingRef) Valid(provider string) bool {
	return m.MeetingID != "" && m.Provider == provider
}

// Batch is the schedulable live-class unit.
type Batch struct {
	ID           string
	TenantID     string
	InstructorID string
	Name         string
	Status       BatchStatus

	// StrictSchedule enables time gating. When false every admission check
	// is bypassed.
	StrictSchedule bool
	StartDate      *time.Time
	EndDate        *time.Time
	// RecurringDays holds weekday names ("Monday", ...). Under strict
	// scheduling an empty set admits nothing.
	RecurringDays []string
	// BatchTime is a daily window such as "10:00 AM-11:00 AM" or
	// "19:30-20:30". Empty means no time-of-day restriction.
	BatchTime string

	Meeting            MeetingRef
	LastClassStartTime *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionStatus is the lifecycle state of a materialized session record.
type SessionStatus string

const SessionCompleted SessionStatus = "completed"

// Session is a historical occurrence of a class meeting, materialized from
// the provider's session history. RemoteSessionID is the idempotency key:
// at most one Session exists per remote session.
type Session struct {
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
	Status            SessionStatus
	ParticipantsCount int
	Notes             string

	CreatedAt time.Time
}

// AttendanceStatus marks the kind of attendance evidence recorded.
type AttendanceStatus string

const AttendancePresent AttendanceStatus = "present"

// Attendance records that a student was admitted to a class on a given day.
type Attendance struct {
	ID        string
	StudentID string
	BatchID   string
	Date      time.Time
	Status    AttendanceStatus
	CreatedAt time.Time
}

// RemoteSession is a provider-reported historical session.
type RemoteSession struct {
	ID        string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
	// DurationSeconds is the provider-computed length when reported;
	// nil means derive it from the created/updated delta.
	DurationSeconds   *float64
	ParticipantsCount int
}

// ParticipantInput describes the participant to issue on the remote meeting.
type ParticipantInput struct {
	Name           string
	PresetName     string
	ExternalUserID string
}

// BatchRepository captures the persistence interactions needed by the
// admission and sync services.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch Batch) error
	GetBatch(ctx context.Context, id string) (Batch, error)
	SaveBatch(ctx context.Context, batch Batch) error
	ListBatchesWithMeeting(ctx context.Context) ([]Batch, error)
}

// SessionRepository persists materialized session records.
type SessionRepository interface {
	SessionExists(ctx context.Context, remoteSessionID string) (bool, error)
	CreateSession(ctx context.Context, session Session) error
	ListSessionsForBatch(ctx context.Context, batchID string) ([]Session, error)
}

// AttendanceRepository persists attendance evidence.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, record Attendance) error
	HasAttendanceForDay(ctx context.Context, studentID, batchID string, day time.Time) (bool, error)
}

// MeetingProvider is the remote video-conferencing service.
type MeetingProvider interface {
	// Provider returns the platform tag stamped onto meeting references.
	Provider() string
	CreateMeeting(ctx context.Context, title string) (string, error)
	AddParticipant(ctx context.Context, meetingID string, participant ParticipantInput) (string, error)
	ListSessions(ctx context.Context, meetingID string) ([]RemoteSession, error)
}

// IdentityDirectory resolves user display names. Failures are expected and
// collapsed to a fallback by the caller.
type IdentityDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}
