package storage

import (
	"context"

	"github.com/julianstephens/medweek/internal/models"
)

// Provider is the row store behind the schedule and adherence engine.
//
// Implementations return errors matching apperrors.ErrNotFound for missing
// rows and apperrors.ErrStorageUnavailable for every backend failure. All
// queries are scoped by user id.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Schedules
	AddSchedule(ctx context.Context, schedule models.Schedule) error
	GetSchedule(ctx context.Context, userID, id string) (models.Schedule, error)
	// ListSchedules returns the user's schedules ordered by time of day, then
	// creation order.
	ListSchedules(ctx context.Context, userID string) ([]models.Schedule, error)
	// UpdateSchedule replaces the time and days of an existing schedule.
	UpdateSchedule(ctx context.Context, schedule models.Schedule) error
	// DeleteSchedule removes the schedule and its adherence entries in one
	// transaction.
	DeleteSchedule(ctx context.Context, userID, id string) error

	// Adherence log
	// AddAdherenceEntry inserts an entry; an existing (schedule, date) row is
	// left untouched.
	AddAdherenceEntry(ctx context.Context, entry models.AdherenceEntry) error
	GetAdherenceEntry(ctx context.Context, userID, scheduleID, date string) (models.AdherenceEntry, error)
	// DeleteAdherenceEntry removes the entry for (schedule, date), if any.
	DeleteAdherenceEntry(ctx context.Context, userID, scheduleID, date string) error
	// ListAdherenceEntries returns entries dated within [startDate, endDate).
	ListAdherenceEntries(ctx context.Context, userID, startDate, endDate string) ([]models.AdherenceEntry, error)
	// CountAdherenceEntries counts every entry stored for a schedule,
	// regardless of date.
	CountAdherenceEntries(ctx context.Context, userID, scheduleID string) (int, error)

	// Utils
	GetConfigPath() string
}
