package main

import (
	"context"
	"errors"
	"time"

	"github.com/example/liveclass-gateway/internal/application"
	"github.com/example/liveclass-gateway/internal/persistence"
)

// mapStorageErr translates storage sentinels into application ones so the
// services stay ignorant of the persistence package.
func mapStorageErr(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return application.ErrNotFound
	}
	return err
}

type batchRepositoryAdapter struct {
	repo persistence.BatchRepository
}

func newBatchRepositoryAdapter(repo persistence.BatchRepository) *batchRepositoryAdapter {
	return &batchRepositoryAdapter{repo: repo}
}

func (a *batchRepositoryAdapter) CreateBatch(ctx context.Context, batch application.Batch) error {
	if err := a.repo.CreateBatch(ctx, toPersistenceBatch(batch)); err != nil {
		return mapStorageErr(err)
	}
	return nil
}

func (a *batchRepositoryAdapter) GetBatch(ctx context.Context, id string) (application.Batch, error) {
	stored, err := a.repo.GetBatch(ctx, id)
	if err != nil {
		return application.Batch{}, mapStorageErr(err)
	}
	return toApplicationBatch(stored), nil
}

func (a *batchRepositoryAdapter) SaveBatch(ctx context.Context, batch application.Batch) error {
	if err := a.repo.SaveBatch(ctx, toPersistenceBatch(batch)); err != nil {
		return mapStorageErr(err)
	}
	return nil
}

func (a *batchRepositoryAdapter) ListBatchesWithMeeting(ctx context.Context) ([]application.Batch, error) {
	models, err := a.repo.ListBatchesWithMeeting(ctx)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	batches := make([]application.Batch, 0, len(models))
	for _, model := range models {
		batches = append(batches, toApplicationBatch(model))
	}
	return batches, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.ClassSessionRepository
}

func newSessionRepositoryAdapter(repo persistence.ClassSessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) SessionExists(ctx context.Context, remoteSessionID string) (bool, error) {
	exists, err := a.repo.SessionExists(ctx, remoteSessionID)
	if err != nil {
		return false, mapStorageErr(err)
	}
	return exists, nil
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) error {
	if err := a.repo.CreateSession(ctx, toPersistenceSession(session)); err != nil {
		// A concurrent sweep already materialized this remote session.
		if errors.Is(err, persistence.ErrDuplicate) {
			return nil
		}
		return mapStorageErr(err)
	}
	return nil
}

func (a *sessionRepositoryAdapter) ListSessionsForBatch(ctx context.Context, batchID string) ([]application.Session, error) {
	models, err := a.repo.ListSessionsForBatch(ctx, batchID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	sessions := make([]application.Session, 0, len(models))
	for _, model := range models {
		sessions = append(sessions, toApplicationSession(model))
	}
	return sessions, nil
}

type attendanceRepositoryAdapter struct {
	repo persistence.AttendanceRepository
}

func newAttendanceRepositoryAdapter(repo persistence.AttendanceRepository) *attendanceRepositoryAdapter {
	return &attendanceRepositoryAdapter{repo: repo}
}

func (a *attendanceRepositoryAdapter) CreateAttendance(ctx context.Context, record application.Attendance) error {
	if err := a.repo.CreateAttendance(ctx, toPersistenceAttendance(record)); err != nil {
		return mapStorageErr(err)
	}
	return nil
}

func (a *attendanceRepositoryAdapter) HasAttendanceForDay(ctx context.Context, studentID, batchID string, day time.Time) (bool, error) {
	has, err := a.repo.HasAttendanceForDay(ctx, studentID, batchID, day)
	if err != nil {
		return false, mapStorageErr(err)
	}
	return has, nil
}

func toApplicationBatch(model persistence.Batch) application.Batch {
	return application.Batch{
		ID:             model.ID,
		TenantID:       model.TenantID,
		InstructorID:   model.InstructorID,
		Name:           model.Name,
		Status:         application.BatchStatus(model.Status),
		StrictSchedule: model.StrictSchedule,
		StartDate:      cloneTime(model.StartDate),
		EndDate:        cloneTime(model.EndDate),
		RecurringDays:  append([]string(nil), model.RecurringDays...),
		BatchTime:      model.BatchTime,
		Meeting: application.MeetingRef{
			MeetingID: model.MeetingID,
			Provider:  model.MeetingProvider,
		},
		LastClassStartTime: cloneTime(model.LastClassStartTime),
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func toPersistenceBatch(batch application.Batch) persistence.Batch {
	return persistence.Batch{
		ID:                 batch.ID,
		TenantID:           batch.TenantID,
		InstructorID:       batch.InstructorID,
		Name:               batch.Name,
		Status:             string(batch.Status),
		StrictSchedule:     batch.StrictSchedule,
		StartDate:          cloneTime(batch.StartDate),
		EndDate:            cloneTime(batch.EndDate),
		RecurringDays:      append([]string(nil), batch.RecurringDays...),
		BatchTime:          batch.BatchTime,
		MeetingID:          batch.Meeting.MeetingID,
		MeetingProvider:    batch.Meeting.Provider,
		LastClassStartTime: cloneTime(batch.LastClassStartTime),
		CreatedAt:          batch.CreatedAt,
		UpdatedAt:          batch.UpdatedAt,
	}
}

func toApplicationSession(model persistence.ClassSession) application.Session {
	return application.Session{
		ID:                model.ID,
		RemoteSessionID:   model.RemoteSessionID,
		BatchID:           model.BatchID,
		TenantID:          model.TenantID,
		InstructorID:      model.InstructorID,
		ScheduledStart:    model.ScheduledStart,
		ScheduledEnd:      model.ScheduledEnd,
		ActualStart:       model.ActualStart,
		ActualEnd:         model.ActualEnd,
		DurationSeconds:   model.DurationSeconds,
		DurationMinutes:   model.DurationMinutes,
		Status:            application.SessionStatus(model.Status),
		ParticipantsCount: model.ParticipantsCount,
		Notes:             model.Notes,
		CreatedAt:         model.CreatedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.ClassSession {
	return persistence.ClassSession{
		ID:                session.ID,
		RemoteSessionID:   session.RemoteSessionID,
		BatchID:           session.BatchID,
		TenantID:          session.TenantID,
		InstructorID:      session.InstructorID,
		ScheduledStart:    session.ScheduledStart,
		ScheduledEnd:      session.ScheduledEnd,
		ActualStart:       session.ActualStart,
		ActualEnd:         session.ActualEnd,
		DurationSeconds:   session.DurationSeconds,
		DurationMinutes:   session.DurationMinutes,
		Status:            string(session.Status),
		ParticipantsCount: session.ParticipantsCount,
		Notes:             session.Notes,
		CreatedAt:         session.CreatedAt,
	}
}

func toPersistenceAttendance(record application.Attendance) persistence.Attendance {
	return persistence.Attendance{
		ID:        record.ID,
		StudentID: record.StudentID,
		BatchID:   record.BatchID,
		Date:      record.Date,
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt,
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
