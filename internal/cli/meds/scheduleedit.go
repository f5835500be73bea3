package meds

import (
	"fmt"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/models"
)

type ScheduleEditCmd struct {
	Schedule    string  `arg:"" help:"Schedule ID, ID prefix or drug name."`
	Time        *string `help:"New time of day (HH:MM)."`
	Days        *string `help:"New comma-separated weekdays; 'none' pauses the schedule."`
	Interactive bool    `short:"i" help:"Edit the schedule with a form."`
}

func (c *ScheduleEditCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	schedule, err := ctx.FindSchedule(bg, userID, c.Schedule)
	if err != nil {
		return fmt.Errorf("failed to find schedule %s: %w", c.Schedule, err)
	}

	tod := schedule.Time
	days := schedule.Days

	if c.Interactive {
		form := &ScheduleFormModel{Time: tod.String(), Days: days}
		if err := NewScheduleForm(form, false).Run(); err != nil {
			return err
		}
		if tod, err = models.ParseTimeOfDay(form.Time); err != nil {
			return err
		}
		days = form.Days
	} else {
		if c.Time == nil && c.Days == nil {
			return fmt.Errorf("nothing to change, pass --time and/or --days")
		}
		if c.Time != nil {
			if tod, err = models.ParseTimeOfDay(*c.Time); err != nil {
				return err
			}
		}
		if c.Days != nil {
			if days, err = cli.ParseDays(*c.Days); err != nil {
				return err
			}
		}
	}

	updated, err := ctx.Schedules.Update(bg, userID, schedule.ID, tod, days, ctx.Now())
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	if updated.Active() {
		ctx.Printf("Updated schedule: %s at %s on %s\n", updated.DrugName, updated.Time, models.FormatWeekdays(updated.Days))
	} else {
		ctx.Printf("Updated schedule: %s is paused (no active days)\n", updated.DrugName)
	}
	return nil
}
