package meds

import (
	"fmt"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/countdown"
	"github.com/julianstephens/medweek/internal/models"
)

type ScheduleListCmd struct {
	ShowIDs bool `help:"Show full schedule IDs." name:"show-ids"`
}

func (c *ScheduleListCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	schedules, err := ctx.Schedules.List(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to get schedules: %w", err)
	}
	if len(schedules) == 0 {
		ctx.Println("No schedules found")
		return nil
	}

	now := ctx.Now()
	ctx.Println("Schedules:")
	for _, s := range schedules {
		id := cli.ShortID(s.ID)
		if c.ShowIDs {
			id = s.ID
		}

		days := models.FormatWeekdays(s.Days)
		if !s.Active() {
			days = "paused"
		}

		ctx.Printf("  %s  %s  %-20s %s", id, s.Time, s.DrugName, days)
		if label := countdown.Label(s, now); label != "" {
			ctx.Printf("  (%s)", label)
		}
		ctx.Println()
	}
	return nil
}
