package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/liveclass-gateway/internal/recurrence"
)

// CreateBatchInput carries the caller-supplied fields for a new batch.
type CreateBatchInput struct {
	TenantID       string
	InstructorID   string
	Name           string
	StrictSchedule bool
	StartDate      *time.Time
	EndDate        *time.Time
	RecurringDays  []string
	BatchTime      string
}

// BatchService exposes the batch catalog: creating batches and reading
// them back with their materialized session history.
type BatchService struct {
	batches  BatchRepository
	sessions SessionRepository

	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBatchService wires the batch catalog dependencies.
func NewBatchService(
	batches BatchRepository,
	sessions SessionRepository,
	idGenerator func() string,
	now func() time.Time,
) *BatchService {
	return NewBatchServiceWithLogger(batches, sessions, idGenerator, now, nil)
}

// NewBatchServiceWithLogger wires dependencies and a base logger.
func NewBatchServiceWithLogger(
	batches BatchRepository,
	sessions SessionRepository,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *BatchService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BatchService{
		batches:     batches,
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// CreateBatch validates and stores a new batch. The batch starts active;
// a malformed time window is accepted and simply never gates admissions.
func (s *BatchService) CreateBatch(ctx context.Context, input CreateBatchInput) (Batch, error) {
	logger := serviceLogger(ctx, s.logger, "batch", "create_batch")

	if strings.TrimSpace(input.Name) == "" {
		return Batch{}, fmt.Errorf("%w: batch name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.InstructorID) == "" {
		return Batch{}, fmt.Errorf("%w: instructor id is required", ErrInvalidInput)
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return Batch{}, fmt.Errorf("%w: end date precedes start date", ErrInvalidInput)
	}

	days := make([]string, 0, len(input.RecurringDays))
	for _, day := range input.RecurringDays {
		day = strings.TrimSpace(day)
		if day == "" {
			continue
		}
		if !knownWeekday(day) {
			return Batch{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, day)
		}
		days = append(days, day)
	}

	now := s.now()
	batch := Batch{
		ID:             s.idGenerator(),
		TenantID:       strings.TrimSpace(input.TenantID),
		InstructorID:   strings.TrimSpace(input.InstructorID),
		Name:           strings.TrimSpace(input.Name),
		Status:         BatchActive,
		StrictSchedule: input.StrictSchedule,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		RecurringDays:  days,
		BatchTime:      strings.TrimSpace(input.BatchTime),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.batches.CreateBatch(ctx, batch); err != nil {
		return Batch{}, fmt.Errorf("create batch: %w", err)
	}

	logger.InfoContext(ctx, "batch created", "batch_id", batch.ID, "strict", batch.StrictSchedule)
	return batch, nil
}

// GetBatch fetches one batch by id.
func (s *BatchService) GetBatch(ctx context.Context, id string) (Batch, error) {
	if strings.TrimSpace(id) == "" {
		return Batch{}, fmt.Errorf("%w: batch id is required", ErrInvalidInput)
	}
	return s.batches.GetBatch(ctx, id)
}

// ListSessions returns the materialized session history for a batch,
// newest first. The batch must exist.
func (s *BatchService) ListSessions(ctx context.Context, batchID string) ([]Session, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, fmt.Errorf("%w: batch id is required", ErrInvalidInput)
	}
	if _, err := s.batches.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.sessions.ListSessionsForBatch(ctx, batchID)
}

// ClassOccurrence is one projected class slot for calendar views.
type ClassOccurrence struct {
	Start time.Time
	End   time.Time
}

// UpcomingOccurrences projects the batch's scheduled class slots between
// from and until. A malformed or missing time window degrades to date-only
// slots; it never fails the projection.
func (s *BatchService) UpcomingOccurrences(ctx context.Context, batchID string, from, until time.Time) ([]ClassOccurrence, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, fmt.Errorf("%w: batch id is required", ErrInvalidInput)
	}
	if !until.After(from) {
		return nil, fmt.Errorf("%w: occurrence window end must be after its start", ErrInvalidInput)
	}

	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	rule := recurrence.Rule{
		BatchID:  batch.ID,
		Weekdays: toWeekdays(batch.RecurringDays),
		StartsOn: batch.StartDate,
		EndsOn:   batch.EndDate,
	}
	if window, perr := parseTimeWindow(batch.BatchTime); perr == nil {
		rule.StartMinute = int(window.start)
		if window.hasEnd {
			rule.EndMinute = int(window.end)
		}
	}

	engine := recurrence.NewEngine(from.Location())
	expanded, err := engine.Expand(rule, recurrence.Window{From: from, Until: until})
	if err != nil {
		return nil, fmt.Errorf("expand occurrences: %w", err)
	}

	occurrences := make([]ClassOccurrence, 0, len(expanded))
	for _, occurrence := range expanded {
		occurrences = append(occurrences, ClassOccurrence{Start: occurrence.Start, End: occurrence.End})
	}
	return occurrences, nil
}

func toWeekdays(names []string) []time.Weekday {
	var days []time.Weekday
	for _, name := range names {
		if day, ok := weekdayByName[strings.ToLower(strings.TrimSpace(name))]; ok {
			days = append(days, day)
		}
	}
	return days
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func knownWeekday(name string) bool {
	_, ok := weekdayByName[strings.ToLower(name)]
	return ok
}
