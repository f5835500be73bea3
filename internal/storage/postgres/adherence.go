package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/models"
)

type entryRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	ScheduleID string    `db:"schedule_id"`
	TakenAt    string    `db:"taken_at"`
	CreatedAt  time.Time `db:"created_at"`
}

// taken_at is a DATE column; it is read back as YYYY-MM-DD text so it
// compares with the dates the ledger computes.
const entrySelect = `SELECT id, user_id, schedule_id, to_char(taken_at, 'YYYY-MM-DD') AS taken_at, created_at FROM adherence_log`

func (r entryRow) toModel() models.AdherenceEntry {
	return models.AdherenceEntry{
		ID:         r.ID,
		UserID:     r.UserID,
		ScheduleID: r.ScheduleID,
		Date:       r.TakenAt,
		CreatedAt:  r.CreatedAt,
	}
}

func (s *Store) AddAdherenceEntry(ctx context.Context, entry models.AdherenceEntry) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adherence_log (id, user_id, schedule_id, taken_at, created_at)
		VALUES ($1, $2, $3, $4::date, $5)
		ON CONFLICT (schedule_id, taken_at) DO NOTHING`,
		entry.ID, entry.UserID, entry.ScheduleID, entry.Date, entry.CreatedAt.UTC())
	return apperrors.Unavailable("add adherence entry", err)
}

func (s *Store) GetAdherenceEntry(ctx context.Context, userID, scheduleID, date string) (models.AdherenceEntry, error) {
	if err := s.ready(); err != nil {
		return models.AdherenceEntry{}, err
	}

	var row entryRow
	err := s.db.GetContext(ctx, &row, entrySelect+`
		WHERE user_id = $1 AND schedule_id = $2 AND taken_at = $3::date`,
		userID, scheduleID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AdherenceEntry{}, apperrors.NotFound("adherence entry", scheduleID+"@"+date)
		}
		return models.AdherenceEntry{}, apperrors.Unavailable("get adherence entry", err)
	}
	return row.toModel(), nil
}

func (s *Store) DeleteAdherenceEntry(ctx context.Context, userID, scheduleID, date string) error {
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM adherence_log WHERE user_id = $1 AND schedule_id = $2 AND taken_at = $3::date`,
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
	err := s.db.SelectContext(ctx, &rows, entrySelect+`
		WHERE user_id = $1 AND taken_at >= $2::date AND taken_at < $3::date
		ORDER BY taken_at ASC, created_at ASC`, userID, startDate, endDate)
	if err != nil {
		return nil, apperrors.Unavailable("list adherence entries", err)
	}

	entries := make([]models.AdherenceEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries, nil
}

func (s *Store) CountAdherenceEntries(ctx context.Context, userID, scheduleID string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM adherence_log WHERE user_id = $1 AND schedule_id = $2`,
		userID, scheduleID)
	if err != nil {
		return 0, apperrors.Unavailable("count adherence entries", err)
	}
	return count, nil
}
