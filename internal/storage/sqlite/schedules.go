package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/medweek/internal/constants"
	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/models"
)

type scheduleRow struct {
	ID            string `db:"id"`
	UserID        string `db:"user_id"`
	DrugName      string `db:"drug_name"`
	ScheduledTime string `db:"scheduled_time"`
	Days          string `db:"days"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
}

const scheduleColumns = `id, user_id, drug_name, scheduled_time, days, created_at, updated_at`

func (r scheduleRow) toModel() (models.Schedule, error) {
	tod, err := models.ParseTimeOfDay(r.ScheduledTime)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("failed to parse scheduled_time for schedule %s: %w", r.ID, err)
	}
	days, err := models.ParseWeekdays(r.Days)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("failed to parse days for schedule %s: %w", r.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("failed to parse created_at for schedule %s: %w", r.ID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("failed to parse updated_at for schedule %s: %w", r.ID, err)
	}

	return models.Schedule{
		ID:        r.ID,
		UserID:    r.UserID,
		DrugName:  r.DrugName,
		Time:      tod,
		Days:      days,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

func (s *Store) AddSchedule(ctx context.Context, schedule models.Schedule) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		schedule.ID, schedule.UserID, schedule.DrugName, schedule.Time.String(),
		models.FormatWeekdays(schedule.Days),
		formatTimestamp(schedule.CreatedAt), formatTimestamp(schedule.UpdatedAt))
	return apperrors.Unavailable("add schedule", err)
}

func (s *Store) GetSchedule(ctx context.Context, userID, id string) (models.Schedule, error) {
	if err := s.ready(); err != nil {
		return models.Schedule{}, err
	}

	var row scheduleRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+scheduleColumns+`
		FROM schedules WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Schedule{}, apperrors.NotFound("schedule", id)
		}
		return models.Schedule{}, apperrors.Unavailable("get schedule", err)
	}
	return row.toModel()
}

func (s *Store) ListSchedules(ctx context.Context, userID string) ([]models.Schedule, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var rows []scheduleRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+scheduleColumns+`
		FROM schedules WHERE user_id = ?
		ORDER BY scheduled_time ASC, created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, apperrors.Unavailable("list schedules", err)
	}

	schedules := make([]models.Schedule, 0, len(rows))
	for _, row := range rows {
		schedule, err := row.toModel()
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, schedule models.Schedule) error {
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE schedules SET scheduled_time = ?, days = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		schedule.Time.String(), models.FormatWeekdays(schedule.Days), formatTimestamp(schedule.UpdatedAt),
		schedule.ID, schedule.UserID)
	if err != nil {
		return apperrors.Unavailable("update schedule", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Unavailable("update schedule", err)
	}
	if rows == 0 {
		return apperrors.NotFound("schedule", schedule.ID)
	}
	return nil
}

func (s *Store) DeleteSchedule(ctx context.Context, userID, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Unavailable("delete schedule", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM adherence_log WHERE schedule_id = ? AND user_id = ?`, id, userID); err != nil {
		return apperrors.Unavailable("delete adherence entries", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM schedules WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return apperrors.Unavailable("delete schedule", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Unavailable("delete schedule", err)
	}
	if rows == 0 {
		return apperrors.NotFound("schedule", id)
	}

	return apperrors.Unavailable("commit delete schedule", tx.Commit())
}
