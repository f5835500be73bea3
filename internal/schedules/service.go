// Package schedules manages a user's medication schedules and keeps their
// reminders and adherence history consistent with edits and deletes.
package schedules

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/ledger"
	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/reminder"
	"github.com/julianstephens/medweek/internal/storage"
)

type Service struct {
	store    storage.Provider
	ledger   *ledger.Ledger
	reminder reminder.Port
}

// New wires a service. A nil port disables reminders.
func New(store storage.Provider, l *ledger.Ledger, port reminder.Port) *Service {
	if l == nil {
		l = ledger.New(store)
	}
	if port == nil {
		port = reminder.Nop{}
	}
	return &Service{
		store:    store,
		ledger:   l,
		reminder: port,
	}
}

// Create validates and stores a new schedule, then arms its reminder.
func (s *Service) Create(ctx context.Context, userID, drugName string, tod models.TimeOfDay, days []models.Weekday, now time.Time) (models.Schedule, error) {
	schedule := models.Schedule{
		ID:        uuid.New().String(),
		UserID:    userID,
		DrugName:  strings.TrimSpace(drugName),
		Time:      tod,
		Days:      models.NormalizeWeekdays(days),
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Validate the raw set so unknown identifiers are reported, not dropped.
	if err := (models.Schedule{DrugName: schedule.DrugName, Time: tod, Days: days}).Validate(); err != nil {
		return models.Schedule{}, err
	}

	if err := s.store.AddSchedule(ctx, schedule); err != nil {
		return models.Schedule{}, apperrors.Unavailable("add schedule", err)
	}
	logger.Info("Schedule created", "schedule_id", schedule.ID, "drug", schedule.DrugName, "time", schedule.Time.String(), "days", models.FormatWeekdays(schedule.Days))

	s.arm(ctx, schedule)
	return schedule, nil
}

// Update replaces the time and days of a schedule. Adherence entries are left
// as they are. An empty day set makes the schedule dormant.
func (s *Service) Update(ctx context.Context, userID, scheduleID string, tod models.TimeOfDay, days []models.Weekday, now time.Time) (models.Schedule, error) {
	if !tod.Valid() {
		return models.Schedule{}, apperrors.Invalid("time of day %s is out of range", tod)
	}
	for _, wd := range days {
		if !wd.Valid() {
			return models.Schedule{}, apperrors.Invalid("unknown weekday %q", wd)
		}
	}

	schedule, err := s.store.GetSchedule(ctx, userID, scheduleID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return models.Schedule{}, err
		}
		return models.Schedule{}, apperrors.Unavailable("load schedule", err)
	}

	schedule.Time = tod
	schedule.Days = models.NormalizeWeekdays(days)
	schedule.UpdatedAt = now

	if err := s.store.UpdateSchedule(ctx, schedule); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return models.Schedule{}, err
		}
		return models.Schedule{}, apperrors.Unavailable("update schedule", err)
	}
	logger.Info("Schedule updated", "schedule_id", schedule.ID, "time", schedule.Time.String(), "days", models.FormatWeekdays(schedule.Days))

	if schedule.Active() {
		s.arm(ctx, schedule)
	} else {
		s.cancel(ctx, schedule.ID)
	}
	return schedule, nil
}

// Delete removes a schedule together with its adherence entries. Deleting a
// schedule that does not exist succeeds.
func (s *Service) Delete(ctx context.Context, userID, scheduleID string) error {
	err := s.store.DeleteSchedule(ctx, userID, scheduleID)
	switch {
	case err == nil:
		logger.Info("Schedule deleted", "schedule_id", scheduleID)
	case apperrors.Is(err, apperrors.ErrNotFound):
		logger.Debug("Schedule already gone", "schedule_id", scheduleID)
	default:
		return apperrors.Unavailable("delete schedule", err)
	}

	s.cancel(ctx, scheduleID)
	return nil
}

// Get returns one schedule.
func (s *Service) Get(ctx context.Context, userID, scheduleID string) (models.Schedule, error) {
	schedule, err := s.store.GetSchedule(ctx, userID, scheduleID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return models.Schedule{}, apperrors.Unavailable("load schedule", err)
	}
	return schedule, err
}

// List returns the user's schedules by time of day, ties in creation order.
func (s *Service) List(ctx context.Context, userID string) ([]models.Schedule, error) {
	schedules, err := s.store.ListSchedules(ctx, userID)
	if err != nil {
		return nil, apperrors.Unavailable("list schedules", err)
	}
	SortByTime(schedules)
	return schedules, nil
}

// SortByTime orders schedules by time of day, then creation time. The sort
// is stable so equal keys keep storage order.
func SortByTime(schedules []models.Schedule) {
	slices.SortStableFunc(schedules, func(a, b models.Schedule) int {
		if d := a.Time.Minutes() - b.Time.Minutes(); d != 0 {
			return d
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// ExistingDrugNames returns the normalized drug names the user already has a
// schedule for.
func (s *Service) ExistingDrugNames(ctx context.Context, userID string) (map[string]struct{}, error) {
	schedules, err := s.store.ListSchedules(ctx, userID)
	if err != nil {
		return nil, apperrors.Unavailable("list schedules", err)
	}
	names := make(map[string]struct{}, len(schedules))
	for _, schedule := range schedules {
		names[models.NormalizeDrugName(schedule.DrugName)] = struct{}{}
	}
	return names, nil
}

// HasDrug reports whether the user already schedules a drug of this name.
func (s *Service) HasDrug(ctx context.Context, userID, drugName string) (bool, error) {
	names, err := s.ExistingDrugNames(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := names[models.NormalizeDrugName(drugName)]
	return ok, nil
}

// Resync arms every active schedule and cancels the rest. It is used when a
// reminder adapter starts.
func (s *Service) Resync(ctx context.Context, userID string) ([]models.Schedule, error) {
	schedules, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, schedule := range schedules {
		if schedule.Active() {
			s.arm(ctx, schedule)
		} else {
			s.cancel(ctx, schedule.ID)
		}
	}
	return schedules, nil
}

func (s *Service) arm(ctx context.Context, schedule models.Schedule) {
	if _, err := s.reminder.Arm(ctx, reminder.FromSchedule(schedule)); err != nil {
		logger.Warn("Failed to arm reminder", "schedule_id", schedule.ID, "error", err)
	}
}

func (s *Service) cancel(ctx context.Context, scheduleID string) {
	if err := s.reminder.Cancel(ctx, scheduleID); err != nil {
		logger.Warn("Failed to cancel reminder", "schedule_id", scheduleID, "error", err)
	}
}
