package models

import (
	"slices"
	"strings"
	"time"

	apperrors "github.com/julianstephens/medweek/internal/errors"
)

// Schedule is a recurring weekly intake plan for one drug.
type Schedule struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	DrugName  string    `json:"drug_name"`
	Time      TimeOfDay `json:"scheduled_time"`
	Days      []Weekday `json:"days"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the schedule has at least one weekday. A schedule
// with no days produces no occurrences, countdowns or reminders.
func (s Schedule) Active() bool {
	return len(s.Days) > 0
}

// HasDay reports whether wd is one of the schedule's active days.
func (s Schedule) HasDay(wd Weekday) bool {
	return slices.Contains(s.Days, wd)
}

// Validate checks the fields required on creation.
func (s Schedule) Validate() error {
	if strings.TrimSpace(s.DrugName) == "" {
		return apperrors.Invalid("drug name cannot be empty")
	}
	if !s.Time.Valid() {
		return apperrors.Invalid("time of day %s is out of range", s.Time)
	}
	if len(s.Days) == 0 {
		return apperrors.Invalid("at least one weekday is required")
	}
	for _, wd := range s.Days {
		if !wd.Valid() {
			return apperrors.Invalid("unknown weekday %q", wd)
		}
	}
	return nil
}

// AdherenceEntry records that a schedule's dose was taken on a calendar date.
type AdherenceEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ScheduleID string    `json:"schedule_id"`
	Date       string    `json:"taken_at"` // YYYY-MM-DD format
	CreatedAt  time.Time `json:"created_at"`
}

// NormalizeDrugName folds a drug name for "already scheduled" comparisons:
// trimmed, lower-cased, inner whitespace collapsed.
func NormalizeDrugName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
