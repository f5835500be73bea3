package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/models"
)

// CronScheduler arms reminders as cron entries that fire at the schedule's
// time of day on its active weekdays only.
type CronScheduler struct {
	cron    *cron.Cron
	deliver Deliverer

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewCronScheduler(loc *time.Location, deliver Deliverer) *CronScheduler {
	if loc == nil {
		loc = time.Local
	}
	if deliver == nil {
		deliver = LogDeliverer{}
	}
	return &CronScheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		deliver: deliver,
		entries: make(map[string]cron.EntryID),
	}
}

// Spec renders the standard five-field cron expression for r, e.g.
// "30 8 * * 1,3,5". Days use cron numbering (0 = Sunday).
func Spec(r Reminder) (string, error) {
	days := models.NormalizeWeekdays(r.Days)
	if len(days) == 0 {
		return "", fmt.Errorf("reminder for %s has no active days", r.ScheduleID)
	}
	if !r.Time.Valid() {
		return "", fmt.Errorf("reminder for %s has invalid time %s", r.ScheduleID, r.Time)
	}
	dow := make([]string, len(days))
	for i, wd := range days {
		dow[i] = strconv.Itoa(int(wd.Time()))
	}
	return fmt.Sprintf("%d %d * * %s", r.Time.Minute, r.Time.Hour, strings.Join(dow, ",")), nil
}

// Arm replaces any entry for r.ScheduleID. A reminder with no active days
// only removes the existing entry.
func (c *CronScheduler) Arm(ctx context.Context, r Reminder) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(r.ScheduleID)
	if len(r.Days) == 0 {
		logger.Debug("Reminder disarmed, schedule has no active days", "schedule_id", r.ScheduleID)
		return Handle{ScheduleID: r.ScheduleID}, nil
	}

	spec, err := Spec(r)
	if err != nil {
		return Handle{}, err
	}

	rem := r
	id, err := c.cron.AddFunc(spec, func() {
		if err := c.deliver.Deliver(context.Background(), rem); err != nil {
			logger.Warn("Failed to deliver reminder", "schedule_id", rem.ScheduleID, "error", err)
		}
	})
	if err != nil {
		return Handle{}, fmt.Errorf("failed to arm reminder for %s: %w", r.ScheduleID, err)
	}
	c.entries[r.ScheduleID] = id

	logger.Debug("Reminder armed", "schedule_id", r.ScheduleID, "spec", spec)
	return Handle{ScheduleID: r.ScheduleID, Next: c.next(id)}, nil
}

func (c *CronScheduler) Cancel(ctx context.Context, scheduleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(scheduleID)
	return nil
}

// Sync arms every schedule in the set and cancels reminders for schedules
// that are no longer present. It returns the number of armed reminders.
func (c *CronScheduler) Sync(ctx context.Context, schedules []models.Schedule) (int, error) {
	keep := make(map[string]bool, len(schedules))
	armed := 0
	for _, s := range schedules {
		keep[s.ID] = true
		if _, err := c.Arm(ctx, FromSchedule(s)); err != nil {
			return armed, err
		}
		if s.Active() {
			armed++
		}
	}

	c.mu.Lock()
	for id := range c.entries {
		if !keep[id] {
			c.removeLocked(id)
		}
	}
	c.mu.Unlock()

	return armed, nil
}

// Armed returns the schedule ids that currently have an entry.
func (c *CronScheduler) Armed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}

// Next reports the next fire time of the reminder for scheduleID.
func (c *CronScheduler) Next(scheduleID string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.entries[scheduleID]
	if !ok {
		return time.Time{}, false
	}
	return c.next(id), true
}

func (c *CronScheduler) Start() {
	c.cron.Start()
}

// Stop halts the scheduler and waits for running deliveries to finish or ctx
// to expire.
func (c *CronScheduler) Stop(ctx context.Context) {
	done := c.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (c *CronScheduler) removeLocked(scheduleID string) {
	if id, ok := c.entries[scheduleID]; ok {
		c.cron.Remove(id)
		delete(c.entries, scheduleID)
	}
}

// next computes the next fire time from the entry's schedule, which is valid
// before the cron loop has started.
func (c *CronScheduler) next(id cron.EntryID) time.Time {
	entry := c.cron.Entry(id)
	if entry.Schedule == nil {
		return time.Time{}
	}
	return entry.Schedule.Next(time.Now().In(c.cron.Location()))
}
