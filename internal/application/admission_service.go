package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const fallbackDisplayName = "Guest"

// AdmissionPolicy carries the tunable pieces of the admission flow.
type AdmissionPolicy struct {
	HostPreset        string
	ParticipantPreset string
	// DedupeDailyAttendance collapses repeated student joins on the same
	// day into one attendance record. Off preserves one record per join.
	DedupeDailyAttendance bool
}

// AdmissionResult is returned to an admitted caller.
type AdmissionResult struct {
	Meeting   MeetingRef
	AuthToken string
	Role      Role
}

// AdmissionService gates Start and Join attempts against a batch's schedule
// and coordinates the side effects of admitting one: meeting lease, batch
// persistence, participant issuance and attendance recording.
type AdmissionService struct {
	batches    BatchRepository
	attendance AttendanceRepository
	provider   MeetingProvider
	identity   IdentityDirectory
	policy     AdmissionPolicy

	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	// leaseLocks serialises the ensure-meeting-then-persist step per batch
	// so concurrent admissions cannot create duplicate meetings.
	leaseLocks sync.Map
}

// NewAdmissionService wires dependencies for the admission flow.
func NewAdmissionService(
	batches BatchRepository,
	attendance AttendanceRepository,
	provider MeetingProvider,
	identity IdentityDirectory,
	policy AdmissionPolicy,
	idGenerator func() string,
	now func() time.Time,
) *AdmissionService {
	return NewAdmissionServiceWithLogger(batches, attendance, provider, identity, policy, idGenerator, now, nil)
}

// NewAdmissionServiceWithLogger wires dependencies and a base logger.
func NewAdmissionServiceWithLogger(
	batches BatchRepository,
	attendance AttendanceRepository,
	provider MeetingProvider,
	identity IdentityDirectory,
	policy AdmissionPolicy,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *AdmissionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AdmissionService{
		batches:     batches,
		attendance:  attendance,
		provider:    provider,
		identity:    identity,
		policy:      policy,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// StartClass opens a batch's session. Only staff roles may start; the
// meeting lease is ensured, the batch is stamped with a fresh class start
// time and a host-level participant is issued. The response role is always
// instructor regardless of which staff role triggered the start.
func (s *AdmissionService) StartClass(ctx context.Context, caller Caller, batchID string) (AdmissionResult, error) {
	logger := serviceLogger(ctx, s.logger, "admission", "start_class", "batch_id", batchID, "caller_id", caller.ID)

	if strings.TrimSpace(batchID) == "" || strings.TrimSpace(caller.ID) == "" {
		return AdmissionResult{}, ErrInvalidInput
	}
	if !caller.Role.CanStartClass() {
		logger.WarnContext(ctx, "start rejected", "reason", "role", "role", string(caller.Role))
		return AdmissionResult{}, ErrUnauthorized
	}

	unlock := s.lockBatch(batchID)
	defer unlock()

	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AdmissionResult{}, ErrNotFound
		}
		return AdmissionResult{}, fmt.Errorf("load batch: %w", err)
	}

	if err := EvaluateSchedule(batch, s.now()); err != nil {
		logger.InfoContext(ctx, "start denied by schedule", "reason", err.Error())
		return AdmissionResult{}, err
	}

	reused, err := s.ensureMeeting(ctx, &batch)
	if err != nil {
		logger.ErrorContext(ctx, "meeting lease failed", "error", err)
		return AdmissionResult{}, err
	}

	startedAt := s.now()
	batch.LastClassStartTime = &startedAt
	if err := s.batches.SaveBatch(ctx, batch); err != nil {
		return AdmissionResult{}, fmt.Errorf("save batch: %w", err)
	}

	token, err := s.issueParticipant(ctx, batch.Meeting.MeetingID, caller, s.policy.HostPreset)
	if err != nil {
		logger.ErrorContext(ctx, "participant issuance failed", "error", err)
		return AdmissionResult{}, err
	}

	logger.InfoContext(ctx, "class started", "meeting_id", batch.Meeting.MeetingID, "meeting_reused", reused)
	return AdmissionResult{Meeting: batch.Meeting, AuthToken: token, Role: RoleInstructor}, nil
}

// JoinClass admits a caller into a batch's running session. Under strict
// scheduling joiners never create the meeting; without it the first joiner
// creates one, mirroring the start path. Student joins record attendance.
func (s *AdmissionService) JoinClass(ctx context.Context, caller Caller, batchID string) (AdmissionResult, error) {
	logger := serviceLogger(ctx, s.logger, "admission", "join_class", "batch_id", batchID, "caller_id", caller.ID)

	if strings.TrimSpace(batchID) == "" || strings.TrimSpace(caller.ID) == "" {
		return AdmissionResult{}, ErrInvalidInput
	}

	unlock := s.lockBatch(batchID)
	defer unlock()

	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AdmissionResult{}, ErrNotFound
		}
		return AdmissionResult{}, fmt.Errorf("load batch: %w", err)
	}

	if err := EvaluateSchedule(batch, s.now()); err != nil {
		logger.InfoContext(ctx, "join denied by schedule", "reason", err.Error())
		return AdmissionResult{}, err
	}

	if !batch.Meeting.Valid(s.provider.Provider()) {
		if batch.StrictSchedule {
			logger.InfoContext(ctx, "join denied", "reason", reasonMeetingMissing)
			return AdmissionResult{}, policyDenied(reasonMeetingMissing)
		}
		if _, err := s.ensureMeeting(ctx, &batch); err != nil {
			logger.ErrorContext(ctx, "meeting lease failed", "error", err)
			return AdmissionResult{}, err
		}
		if err := s.batches.SaveBatch(ctx, batch); err != nil {
			return AdmissionResult{}, fmt.Errorf("save batch: %w", err)
		}
	}

	preset := s.policy.ParticipantPreset
	if caller.Role.HostPrivileges() {
		preset = s.policy.HostPreset
	}

	token, err := s.issueParticipant(ctx, batch.Meeting.MeetingID, caller, preset)
	if err != nil {
		logger.ErrorContext(ctx, "participant issuance failed", "error", err)
		return AdmissionResult{}, err
	}

	if caller.Role == RoleStudent {
		if err := s.recordAttendance(ctx, caller, batch); err != nil {
			return AdmissionResult{}, err
		}
	}

	logger.InfoContext(ctx, "caller joined", "meeting_id", batch.Meeting.MeetingID, "role", string(caller.Role))
	return AdmissionResult{Meeting: batch.Meeting, AuthToken: token, Role: caller.Role}, nil
}

// ensureMeeting implements the meeting lease. A reference bound to the
// configured provider is reused; anything else, including a reference left
// behind by a different provider, is replaced with a freshly created
// meeting. The caller persists the mutated batch.
func (s *AdmissionService) ensureMeeting(ctx context.Context, batch *Batch) (reused bool, err error) {
	provider := s.provider.Provider()
	if batch.Meeting.Valid(provider) {
		return true, nil
	}

	meetingID, err := s.provider.CreateMeeting(ctx, batch.Name)
	if err != nil {
		return false, providerFailure("create meeting", err)
	}

	batch.Meeting = MeetingRef{MeetingID: meetingID, Provider: provider}
	return false, nil
}

func (s *AdmissionService) issueParticipant(ctx context.Context, meetingID string, caller Caller, preset string) (string, error) {
	token, err := s.provider.AddParticipant(ctx, meetingID, ParticipantInput{
		Name:           s.displayName(ctx, caller),
		PresetName:     preset,
		ExternalUserID: caller.ID,
	})
	if err != nil {
		return "", providerFailure("add participant", err)
	}
	return token, nil
}

// displayName resolves the caller's name best effort: directory lookup,
// then the stored email, then a generic placeholder.
func (s *AdmissionService) displayName(ctx context.Context, caller Caller) string {
	if s.identity != nil {
		name, err := s.identity.DisplayName(ctx, caller.ID)
		if err == nil && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
		if err != nil {
			serviceLogger(ctx, s.logger, "admission", "resolve_name", "caller_id", caller.ID).
				DebugContext(ctx, "display name lookup failed", "error", err)
		}
	}
	if strings.TrimSpace(caller.Email) != "" {
		return strings.TrimSpace(caller.Email)
	}
	return fallbackDisplayName
}

func (s *AdmissionService) recordAttendance(ctx context.Context, caller Caller, batch Batch) error {
	now := s.now()
	day := startOfDay(now, now.Location())

	if s.policy.DedupeDailyAttendance {
		exists, err := s.attendance.HasAttendanceForDay(ctx, caller.ID, batch.ID, day)
		if err != nil {
			return fmt.Errorf("check attendance: %w", err)
		}
		if exists {
			return nil
		}
	}

	record := Attendance{
		ID:        s.idGenerator(),
		StudentID: caller.ID,
		BatchID:   batch.ID,
		Date:      day,
		Status:    AttendancePresent,
		CreatedAt: now,
	}
	if err := s.attendance.CreateAttendance(ctx, record); err != nil {
		return fmt.Errorf("record attendance: %w", err)
	}
	return nil
}

func (s *AdmissionService) lockBatch(batchID string) func() {
	value, _ := s.leaseLocks.LoadOrStore(batchID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
