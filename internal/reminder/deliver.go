package reminder

import (
	"context"

	"github.com/julianstephens/medweek/internal/logger"
)

// Deliverer shows a reminder to the user.
type Deliverer interface {
	Deliver(ctx context.Context, r Reminder) error
}

// LogDeliverer writes reminders to the log.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(_ context.Context, r Reminder) error {
	logger.Info(r.Title(), "drug", r.DrugName, "schedule_id", r.ScheduleID, "time", r.Time.String())
	return nil
}

// Fallback tries each deliverer in order until one succeeds.
type Fallback []Deliverer

func (f Fallback) Deliver(ctx context.Context, r Reminder) error {
	var lastErr error
	for _, d := range f {
		if err := d.Deliver(ctx, r); err != nil {
			logger.Debug("Reminder delivery failed, trying next", "schedule_id", r.ScheduleID, "error", err)
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
