package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/models"
)

type entryRow struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	ScheduleID string `db:"schedule_id"`
	TakenAt    string `db:"taken_at"`
	CreatedAt  string `db:"created_at"`
}

const entryColumns = `id, user_id, schedule_id, taken_at, created_at`

func (r entryRow) toModel() (models.AdherenceEntry, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return models.AdherenceEntry{}, fmt.Errorf("failed to parse created_at for entry %s: %w", r.ID, err)
	}
	return models.AdherenceEntry{
		ID:         r.ID,
		UserID:     r.UserID,
		ScheduleID: r.ScheduleID,
		Date:       r.TakenAt,
		CreatedAt:  createdAt,
	}, nil
}

func (s *Store) AddAdherenceEntry(ctx context.Context, entry models.AdherenceEntry) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adherence_log (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(schedule_id, taken_at) DO NOTHING`,
		entry.ID, entry.UserID, entry.ScheduleID, entry.Date, formatTimestamp(entry.CreatedAt))
	return apperrors.Unavailable("add adherence entry", err)
}

func (s *Store) GetAdherenceEntry(ctx context.Context, userID, scheduleID, date string) (models.AdherenceEntry, error) {
	if err := s.ready(); err != nil {
		return models.AdherenceEntry{}, err
	}

	var row entryRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+entryColumns+`
		FROM adherence_log WHERE user_id = ? AND schedule_id = ? AND taken_at = ?`,
		userID, scheduleID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AdherenceEntry{}, apperrors.NotFound("adherence entry", scheduleID+"@"+date)
		}
		return models.AdherenceEntry{}, apperrors.Unavailable("get adherence entry", err)
	}
	return row.toModel()
}

func (s *Store) DeleteAdherenceEntry(ctx context.Context, userID, scheduleID, date string) error {
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM adherence_log WHERE user_id = ? AND schedule_id = ? AND taken_at = ?`,
		userID, scheduleID, date)
	if err != nil {
		return apperrors.Unavailable("delete adherence entry", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Unavailable("delete adherence entry", err)
	}
	if rows == 0 {
		return apperrors.NotFound("adherence entry", scheduleID+"@"+date)
	}
	return nil
}

func (s *Store) ListAdherenceEntries(ctx context.Context, userID, startDate, endDate string) ([]models.AdherenceEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+entryColumns+`
		FROM adherence_log
		WHERE user_id = ? AND taken_at >= ? AND taken_at < ?
		ORDER BY taken_at ASC, created_at ASC`, userID, startDate, endDate)
	if err != nil {
		return nil, apperrors.Unavailable("list adherence entries", err)
	}

	entries := make([]models.AdherenceEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toModel()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) CountAdherenceEntries(ctx context.Context, userID, scheduleID string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM adherence_log WHERE user_id = ? AND schedule_id = ?`,
		userID, scheduleID)
	if err != nil {
		return 0, apperrors.Unavailable("count adherence entries", err)
	}
	return count, nil
}
