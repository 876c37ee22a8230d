package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/liveclass-gateway/internal/persistence"
)

const batchColumns = `id, tenant_id, instructor_id, name, status, strict_schedule,
	start_date, end_date, recurring_days, batch_time,
	meeting_id, meeting_provider, last_class_start_time, created_at, updated_at`

// CreateBatch inserts a new batch row.
func (s *Store) CreateBatch(ctx context.Context, batch persistence.Batch) error {
	if batch.ID == "" {
		return fmt.Errorf("sqlite: batch id is required")
	}
	days, err := encodeDays(batch.RecurringDays)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO batches (`+batchColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.TenantID,
		batch.InstructorID,
		batch.Name,
		batch.Status,
		boolToInt(batch.StrictSchedule),
		formatTimePtr(batch.StartDate),
		formatTimePtr(batch.EndDate),
		days,
		batch.BatchTime,
		batch.MeetingID,
		batch.MeetingProvider,
		formatTimePtr(batch.LastClassStartTime),
		formatTime(batch.CreatedAt),
		formatTime(batch.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// SaveBatch updates an existing batch row, including its meeting lease
// fields and last class start time.
func (s *Store) SaveBatch(ctx context.Context, batch persistence.Batch) error {
	days, err := encodeDays(batch.RecurringDays)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE batches SET
			tenant_id = ?, instructor_id = ?, name = ?, status = ?, strict_schedule = ?,
			start_date = ?, end_date = ?, recurring_days = ?, batch_time = ?,
			meeting_id = ?, meeting_provider = ?, last_class_start_time = ?, updated_at = ?
		 WHERE id = ?`,
		batch.TenantID,
		batch.InstructorID,
		batch.Name,
		batch.Status,
		boolToInt(batch.StrictSchedule),
		formatTimePtr(batch.StartDate),
		formatTimePtr(batch.EndDate),
		days,
		batch.BatchTime,
		batch.MeetingID,
		batch.MeetingProvider,
		formatTimePtr(batch.LastClassStartTime),
		formatTime(batch.UpdatedAt),
		batch.ID,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetBatch retrieves a batch by id.
func (s *Store) GetBatch(ctx context.Context, id string) (persistence.Batch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Batch{}, persistence.ErrNotFound
	}
	return batch, err
}

// ListBatchesWithMeeting returns every batch holding a meeting reference.
func (s *Store) ListBatchesWithMeeting(ctx context.Context) ([]persistence.Batch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE meeting_id != '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []persistence.Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (persistence.Batch, error) {
	var (
		batch          persistence.Batch
		strict         int
		startDate      sql.NullString
		endDate        sql.NullString
		days           sql.NullString
		lastClassStart sql.NullString
		createdAt      string
		updatedAt      string
	)
	err := row.Scan(
		&batch.ID,
		&batch.TenantID,
		&batch.InstructorID,
		&batch.Name,
		&batch.Status,
		&strict,
		&startDate,
		&endDate,
		&days,
		&batch.BatchTime,
		&batch.MeetingID,
		&batch.MeetingProvider,
		&lastClassStart,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Batch{}, err
	}

	batch.StrictSchedule = strict != 0
	if batch.StartDate, err = parseTimePtr(startDate); err != nil {
		return persistence.Batch{}, fmt.Errorf("parse start_date: %w", err)
	}
	if batch.EndDate, err = parseTimePtr(endDate); err != nil {
		return persistence.Batch{}, fmt.Errorf("parse end_date: %w", err)
	}
	if batch.LastClassStartTime, err = parseTimePtr(lastClassStart); err != nil {
		return persistence.Batch{}, fmt.Errorf("parse last_class_start_time: %w", err)
	}
	if batch.RecurringDays, err = decodeDays(days); err != nil {
		return persistence.Batch{}, err
	}
	if batch.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Batch{}, fmt.Errorf("parse created_at: %w", err)
	}
	if batch.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Batch{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return batch, nil
}

func encodeDays(days []string) (sql.NullString, error) {
	if len(days) == 0 {
		return sql.NullString{}, nil
	}
	encoded, err := json.Marshal(days)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode recurring days: %w", err)
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

func decodeDays(value sql.NullString) ([]string, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var days []string
	if err := json.Unmarshal([]byte(value.String), &days); err != nil {
		return nil, fmt.Errorf("decode recurring days: %w", err)
	}
	return days, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
