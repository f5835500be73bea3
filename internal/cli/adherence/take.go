package adherence

import (
	"fmt"

	"github.com/julianstephens/medweek/internal/calendar"
	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/ledger"
)

// TakeCmd toggles the taken mark of one dose in the current week.
type TakeCmd struct {
	Schedule string `arg:"" help:"Schedule ID, ID prefix or drug name."`
	Day      string `arg:"" optional:"" help:"Weekday of the current week (default: today)."`
}

func (c *TakeCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	now := ctx.Now()
	wd, err := cli.ParseDay(c.Day, now)
	if err != nil {
		return err
	}

	schedule, err := ctx.FindSchedule(bg, userID, c.Schedule)
	if err != nil {
		return fmt.Errorf("failed to find schedule %s: %w", c.Schedule, err)
	}

	state, err := ctx.Ledger.Toggle(bg, userID, schedule.ID, wd, now)
	if err != nil {
		return fmt.Errorf("failed to toggle %s on %s: %w", schedule.DrugName, wd, err)
	}

	date := calendar.DateOfWeekday(wd, now).Format(constants.DateFormat)
	if state == ledger.Taken {
		ctx.Printf("✓ %s marked taken for %s %s\n", schedule.DrugName, wd, date)
	} else {
		ctx.Printf("○ %s marked not taken for %s %s\n", schedule.DrugName, wd, date)
	}
	return nil
}
