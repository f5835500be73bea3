package meds

import (
	"fmt"
	"strings"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/models"
)

type ScheduleAddCmd struct {
	Drug        string `arg:"" optional:"" help:"Drug name."`
	Time        string `help:"Time of day (HH:MM)." default:"08:00"`
	Days        string `help:"Comma-separated weekdays (e.g. mon,wed,fri)." default:"mon,tue,wed,thu,fri,sat,sun"`
	Force       bool   `help:"Add even when the drug is already scheduled."`
	Interactive bool   `short:"i" help:"Fill in the schedule with a form."`
}

func (c *ScheduleAddCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	if c.Interactive {
		form := &ScheduleFormModel{Drug: c.Drug, Time: c.Time}
		if days, err := cli.ParseDays(c.Days); err == nil {
			form.Days = days
		}
		if err := NewScheduleForm(form, true).Run(); err != nil {
			return err
		}
		c.Drug = form.Drug
		c.Time = form.Time
		c.Days = models.FormatWeekdays(form.Days)
	}

	if strings.TrimSpace(c.Drug) == "" {
		return fmt.Errorf("drug name is required")
	}
	tod, err := models.ParseTimeOfDay(c.Time)
	if err != nil {
		return err
	}
	days, err := cli.ParseDays(c.Days)
	if err != nil {
		return err
	}

	if !c.Force {
		exists, err := ctx.Schedules.HasDrug(bg, userID, c.Drug)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s is already scheduled, use --force to add another time", strings.TrimSpace(c.Drug))
		}
	}

	schedule, err := ctx.Schedules.Create(bg, userID, c.Drug, tod, days, ctx.Now())
	if err != nil {
		return fmt.Errorf("failed to add schedule: %w", err)
	}

	ctx.Printf("Added schedule: %s at %s on %s (ID: %s)\n", schedule.DrugName, schedule.Time, models.FormatWeekdays(schedule.Days), schedule.ID)
	return nil
}
