// Package reminder keeps recurring dose reminders in sync with schedules.
//
// The core only talks to Port. CronScheduler is the in-process adapter used
// by the long-running `medweek remind` command; one-shot commands use Nop.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/models"
)

// Reminder describes a recurring reminder for one schedule.
type Reminder struct {
	ScheduleID string
	DrugName   string
	Time       models.TimeOfDay
	Days       []models.Weekday
}

// FromSchedule builds the reminder for s.
func FromSchedule(s models.Schedule) Reminder {
	return Reminder{
		ScheduleID: s.ID,
		DrugName:   s.DrugName,
		Time:       s.Time,
		Days:       s.Days,
	}
}

// Title is the notification headline.
func (r Reminder) Title() string {
	return "Time for your medication"
}

// Body is the notification text.
func (r Reminder) Body() string {
	return fmt.Sprintf("Don't forget your dose of %s", r.DrugName)
}

// Handle identifies an armed reminder. Next is zero when the adapter cannot
// tell the next fire time.
type Handle struct {
	ScheduleID string
	Next       time.Time
}

// Port arms and cancels reminders. Arm replaces any reminder already armed
// for the same schedule. Cancel of an unknown schedule is a no-op.
type Port interface {
	Arm(ctx context.Context, r Reminder) (Handle, error)
	Cancel(ctx context.Context, scheduleID string) error
}

// Nop accepts every request and does nothing.
type Nop struct{}

func (Nop) Arm(_ context.Context, r Reminder) (Handle, error) {
	logger.Debug("Reminder not armed (no reminder adapter)", "schedule_id", r.ScheduleID)
	return Handle{ScheduleID: r.ScheduleID}, nil
}

func (Nop) Cancel(_ context.Context, scheduleID string) error {
	logger.Debug("Reminder not cancelled (no reminder adapter)", "schedule_id", scheduleID)
	return nil
}
