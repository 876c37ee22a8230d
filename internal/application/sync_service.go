package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// minSessionSeconds is the shortest remote session worth materializing.
// Anything below is treated as a test call or connection noise.
const minSessionSeconds = 60

const remoteStatusEnded = "ended"

// SyncService backfills local session history from the provider's records.
// The sweep is idempotent: a remote session is materialized at most once,
// keyed by its remote identifier.
type SyncService struct {
	batches  BatchRepository
	sessions SessionRepository
	provider MeetingProvider

	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSyncService wires dependencies for the reconciliation sweep.
func NewSyncService(
	batches BatchRepository,
	sessions SessionRepository,
	provider MeetingProvider,
	idGenerator func() string,
	now func() time.Time,
) *SyncService {
	return NewSyncServiceWithLogger(batches, sessions, provider, idGenerator, now, nil)
}

// NewSyncServiceWithLogger wires dependencies and a base logger.
func NewSyncServiceWithLogger(
	batches BatchRepository,
	sessions SessionRepository,
	provider MeetingProvider,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *SyncService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SyncService{
		batches:     batches,
		sessions:    sessions,
		provider:    provider,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// SyncSessions scans every batch holding a meeting reference, pulls the
// provider's session history and materializes the ended sessions that have
// no local record yet. Per-batch provider failures are logged and skipped;
// only a failure to enumerate batches aborts the sweep. It returns the
// number of newly materialized sessions.
func (s *SyncService) SyncSessions(ctx context.Context) (int, error) {
	logger := serviceLogger(ctx, s.logger, "sync", "sync_sessions")

	batches, err := s.batches.ListBatchesWithMeeting(ctx)
	if err != nil {
		return 0, fmt.Errorf("list batches: %w", err)
	}

	synced := 0
	for _, batch := range batches {
		count, err := s.syncBatch(ctx, batch)
		if err != nil {
			logger.WarnContext(ctx, "batch sync skipped", "batch_id", batch.ID, "error", err)
			continue
		}
		synced += count
	}

	logger.InfoContext(ctx, "sweep finished", "batches", len(batches), "synced", synced)
	return synced, nil
}

func (s *SyncService) syncBatch(ctx context.Context, batch Batch) (int, error) {
	remote, err := s.provider.ListSessions(ctx, batch.Meeting.MeetingID)
	if err != nil {
		return 0, providerFailure("list sessions", err)
	}

	logger := serviceLogger(ctx, s.logger, "sync", "sync_sessions", "batch_id", batch.ID)

	created := 0
	for _, session := range remote {
		if !strings.EqualFold(session.Status, remoteStatusEnded) {
			continue
		}

		exists, err := s.sessions.SessionExists(ctx, session.ID)
		if err != nil {
			logger.WarnContext(ctx, "session lookup failed", "remote_session_id", session.ID, "error", err)
			continue
		}
		if exists {
			continue
		}

		seconds := remoteDurationSeconds(session)
		if seconds < minSessionSeconds {
			continue
		}

		record := s.materialize(batch, session, seconds)
		if err := s.sessions.CreateSession(ctx, record); err != nil {
			logger.WarnContext(ctx, "session create failed", "remote_session_id", session.ID, "error", err)
			continue
		}
		created++
	}

	return created, nil
}

// materialize builds the local record for an ended remote session. The
// scheduled window comes from the batch's daily time when parseable,
// anchored to the day the session actually ran; otherwise it mirrors the
// actual timestamps.
func (s *SyncService) materialize(batch Batch, session RemoteSession, seconds float64) Session {
	scheduledStart := session.CreatedAt
	scheduledEnd := session.UpdatedAt
	if batch.BatchTime != "" {
		if window, err := parseTimeWindow(batch.BatchTime); err == nil {
			scheduledStart = window.start.anchor(session.CreatedAt)
			if window.hasEnd {
				scheduledEnd = window.end.anchor(session.CreatedAt)
			}
		}
	}

	return Session{
		ID:                s.idGenerator(),
		RemoteSessionID:   session.ID,
		BatchID:           batch.ID,
		TenantID:          batch.TenantID,
		InstructorID:      batch.InstructorID,
		ScheduledStart:    scheduledStart,
		ScheduledEnd:      scheduledEnd,
		ActualStart:       session.CreatedAt,
		ActualEnd:         session.UpdatedAt,
		DurationSeconds:   int(seconds),
		DurationMinutes:   roundMinutes(seconds),
		Status:            SessionCompleted,
		ParticipantsCount: session.ParticipantsCount,
		Notes:             fmt.Sprintf("%s session on %s", batch.Name, session.CreatedAt.Format("2006-01-02")),
		CreatedAt:         s.now(),
	}
}

func remoteDurationSeconds(session RemoteSession) float64 {
	if session.DurationSeconds != nil {
		return *session.DurationSeconds
	}
	return session.UpdatedAt.Sub(session.CreatedAt).Seconds()
}

func roundMinutes(seconds float64) float64 {
	return math.Round(seconds/60*100) / 100
}
