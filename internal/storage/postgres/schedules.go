package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/models"
)

type scheduleRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	DrugName      string         `db:"drug_name"`
	ScheduledTime string         `db:"scheduled_time"`
	Days          pq.StringArray `db:"days"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

const scheduleColumns = `id, user_id, drug_name, scheduled_time, days, created_at, updated_at`

func (r scheduleRow) toModel() (models.Schedule, error) {
	tod, err := models.ParseTimeOfDay(r.ScheduledTime)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("failed to parse scheduled_time for schedule %s: %w", r.ID, err)
	}
	days := make([]models.Weekday, 0, len(r.Days))
	for _, d := range r.Days {
		wd, err := models.ParseWeekday(d)
		if err != nil {
			return models.Schedule{}, fmt.Errorf("failed to parse days for schedule %s: %w", r.ID, err)
		}
		days = append(days, wd)
	}

	return models.Schedule{
		ID:        r.ID,
		UserID:    r.UserID,
		DrugName:  r.DrugName,
		Time:      tod,
		Days:      models.NormalizeWeekdays(days),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func dayArray(days []models.Weekday) pq.StringArray {
	out := make(pq.StringArray, len(days))
	for i, wd := range days {
		out[i] = wd.String()
	}
	return out
}

func (s *Store) AddSchedule(ctx context.Context, schedule models.Schedule) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (`+scheduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schedule.ID, schedule.UserID, schedule.DrugName, schedule.Time.String(),
		dayArray(schedule.Days), schedule.CreatedAt.UTC(), schedule.UpdatedAt.UTC())
	return apperrors.Unavailable("add schedule", err)
}

func (s *Store) GetSchedule(ctx context.Context, userID, id string) (models.Schedule, error) {
	if err := s.ready(); err != nil {
		return models.Schedule{}, err
	}

	var row scheduleRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+scheduleColumns+`
		FROM schedules WHERE id = $1 AND user_id = $2`, id, userID)
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
		FROM schedules WHERE user_id = $1
		ORDER BY scheduled_time ASC, created_at ASC, id ASC`, userID)
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
		UPDATE schedules SET scheduled_time = $1, days = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5`,
		schedule.Time.String(), dayArray(schedule.Days), schedule.UpdatedAt.UTC(),
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
		DELETE FROM adherence_log WHERE schedule_id = $1 AND user_id = $2`, id, userID); err != nil {
		return apperrors.Unavailable("delete adherence entries", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM schedules WHERE id = $1 AND user_id = $2`, id, userID)
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
