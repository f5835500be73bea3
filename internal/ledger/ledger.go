// Package ledger records which scheduled doses were taken on which dates.
//
// Adherence is scoped to the current calendar week: entries from earlier
// weeks stay in storage but are never shown, which is the whole of the
// weekly reset.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/medweek/internal/calendar"
	"github.com/julianstephens/medweek/internal/constants"
	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/storage"
)

// State is the adherence state of one (schedule, date) pair after a toggle.
type State int

const (
	Untaken State = iota
	Taken
)

func (s State) String() string {
	if s == Taken {
		return "taken"
	}
	return "untaken"
}

type Ledger struct {
	store storage.Provider
}

func New(store storage.Provider) *Ledger {
	return &Ledger{store: store}
}

// IsTaken reports whether an entry exists for the date of wd in now's week.
func (l *Ledger) IsTaken(ctx context.Context, userID, scheduleID string, wd models.Weekday, now time.Time) (bool, error) {
	if !wd.Valid() {
		return false, apperrors.Invalid("unknown weekday %q", wd)
	}
	return l.isTaken(ctx, userID, scheduleID, calendar.DateStringOfWeekday(wd, now))
}

func (l *Ledger) isTaken(ctx context.Context, userID, scheduleID, date string) (bool, error) {
	_, err := l.store.GetAdherenceEntry(ctx, userID, scheduleID, date)
	if err == nil {
		return true, nil
	}
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return false, apperrors.Unavailable("check adherence", err)
}

// Toggle flips the taken state of the dose on wd in now's week and returns the
// new state. The schedule must belong to userID and wd must be one of its
// active days.
func (l *Ledger) Toggle(ctx context.Context, userID, scheduleID string, wd models.Weekday, now time.Time) (State, error) {
	if !wd.Valid() {
		return Untaken, apperrors.Invalid("unknown weekday %q", wd)
	}

	schedule, err := l.store.GetSchedule(ctx, userID, scheduleID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return Untaken, err
		}
		return Untaken, apperrors.Unavailable("load schedule", err)
	}
	if !schedule.HasDay(wd) {
		return Untaken, apperrors.Invalid("%s is not an active day for %s", wd, schedule.DrugName)
	}

	date := calendar.DateStringOfWeekday(wd, now)
	taken, err := l.isTaken(ctx, userID, scheduleID, date)
	if err != nil {
		return Untaken, err
	}

	if taken {
		err := l.store.DeleteAdherenceEntry(ctx, userID, scheduleID, date)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return Untaken, apperrors.Unavailable("remove adherence entry", err)
		}
		logger.Debug("Adherence entry removed", "schedule_id", scheduleID, "date", date)
		return Untaken, nil
	}

	entry := models.AdherenceEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		ScheduleID: scheduleID,
		Date:       date,
		CreatedAt:  now,
	}
	if err := l.store.AddAdherenceEntry(ctx, entry); err != nil {
		return Untaken, apperrors.Unavailable("add adherence entry", err)
	}
	logger.Debug("Adherence entry added", "schedule_id", scheduleID, "date", date)
	return Taken, nil
}

// CurrentWeekEntries returns the user's entries dated within now's week.
func (l *Ledger) CurrentWeekEntries(ctx context.Context, userID string, now time.Time) ([]models.AdherenceEntry, error) {
	start, end := calendar.CurrentWeek(now).DateRange()
	entries, err := l.store.ListAdherenceEntries(ctx, userID, start, end)
	if err != nil {
		return nil, apperrors.Unavailable("list adherence entries", err)
	}
	return entries, nil
}

// Summary is one schedule's adherence for the current week.
type Summary struct {
	// Due counts occurrences between the start of the week and now, inclusive.
	Due int
	// Taken counts the distinct active days marked taken this week.
	Taken     int
	TakenDays []models.Weekday
}

// Missed is the number of due doses not marked taken. Doses taken ahead of
// time do not make it negative.
func (s Summary) Missed() int {
	if s.Taken >= s.Due {
		return 0
	}
	return s.Due - s.Taken
}

// Summary computes the weekly summary of schedule from already-fetched
// entries. Entries for other schedules or outside now's week are ignored.
func (l *Ledger) Summary(schedule models.Schedule, entries []models.AdherenceEntry, now time.Time) Summary {
	week := calendar.CurrentWeek(now)

	var sum Summary
	if occurrences, err := calendar.Occurrences(schedule.Time, schedule.Days, week.Start, week.End); err != nil {
		logger.Warn("Failed to expand occurrences", "schedule_id", schedule.ID, "error", err)
	} else {
		for _, o := range occurrences {
			if !o.After(now) {
				sum.Due++
			}
		}
	}

	seen := make(map[models.Weekday]bool)
	for _, e := range entries {
		if e.ScheduleID != schedule.ID || !week.ContainsDate(e.Date) {
			continue
		}
		d, err := time.ParseInLocation(constants.DateFormat, e.Date, now.Location())
		if err != nil {
			continue
		}
		wd := models.FromTime(d.Weekday())
		if schedule.HasDay(wd) {
			seen[wd] = true
		}
	}
	for _, wd := range models.Week {
		if seen[wd] {
			sum.TakenDays = append(sum.TakenDays, wd)
		}
	}
	sum.Taken = len(sum.TakenDays)
	return sum
}
