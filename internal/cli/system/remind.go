package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/reminder"
)

// RemindCmd runs the reminder daemon: every active schedule is armed on an
// in-process cron scheduler and the set is resynced from storage
// periodically.
type RemindCmd struct {
	Once bool `help:"Arm the reminders, print when each fires next and exit."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	if !ctx.Config.Reminders.Enabled {
		return errors.New("reminders are disabled (reminders.enabled in config)")
	}

	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	deliver := reminder.Fallback{
		reminder.NewTrayNotifier(ctx.Config.Reminders.DurationMs),
		reminder.LogDeliverer{},
	}
	scheduler := reminder.NewCronScheduler(ctx.Location, deliver)
	ctx.WithReminders(scheduler)

	schedules, armed, err := c.sync(bg, ctx, scheduler, userID)
	if err != nil {
		return err
	}

	if c.Once {
		c.printNext(ctx, scheduler, schedules)
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start()
	defer scheduler.Stop(context.Background())

	interval := ctx.Config.ResyncInterval()
	ctx.Printf("Reminders running for %s: %d armed, resync every %s (Ctrl+C to stop)\n", userID, armed, interval)
	logger.Info("Reminder daemon started", "user", userID, "armed", armed, "resync", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("Reminder daemon stopping")
			return nil
		case <-ticker.C:
			if _, _, err := c.sync(sigCtx, ctx, scheduler, userID); err != nil {
				// Keep the reminders already armed until storage is back
				logger.Warn("Reminder resync failed", "error", err)
			}
		}
	}
}

func (c *RemindCmd) sync(bg context.Context, ctx *cli.Context, scheduler *reminder.CronScheduler, userID string) ([]models.Schedule, int, error) {
	schedules, err := ctx.Schedules.List(bg, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load schedules: %w", err)
	}
	armed, err := scheduler.Sync(bg, schedules)
	return schedules, armed, err
}

func (c *RemindCmd) printNext(ctx *cli.Context, scheduler *reminder.CronScheduler, schedules []models.Schedule) {
	printed := 0
	for _, s := range schedules {
		next, ok := scheduler.Next(s.ID)
		if !ok {
			continue
		}
		ctx.Printf("  %s  %-20s next %s\n", cli.ShortID(s.ID), s.DrugName, next.In(ctx.Location).Format(constants.DateFormat+" "+constants.TimeFormat))
		printed++
	}
	if printed == 0 {
		ctx.Println("No reminders armed")
	}
}
