package meds

import (
	"fmt"

	"github.com/julianstephens/medweek/internal/cli"
)

type ScheduleDeleteCmd struct {
	Schedule string `arg:"" help:"Schedule ID, ID prefix or drug name."`
}

func (c *ScheduleDeleteCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	schedule, err := ctx.FindSchedule(bg, userID, c.Schedule)
	if err != nil {
		return fmt.Errorf("failed to find schedule %s: %w", c.Schedule, err)
	}

	if err := ctx.Schedules.Delete(bg, userID, schedule.ID); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	ctx.Printf("Deleted schedule: %s (ID: %s)\n", schedule.DrugName, schedule.ID)
	return nil
}
