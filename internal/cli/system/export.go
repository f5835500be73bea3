package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/config"
	"github.com/julianstephens/medweek/internal/export"
)

// ExportCmd writes the schedules as an iCalendar feed.
type ExportCmd struct {
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	schedules, err := ctx.Schedules.List(bg, userID)
	if err != nil {
		return fmt.Errorf("failed to get schedules: %w", err)
	}

	if c.Output == "" {
		return export.WriteICS(ctx.Out, schedules, ctx.Now())
	}

	path := config.ExpandPath(c.Output)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteICS(f, schedules, ctx.Now()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("Exported %d schedules to %s\n", len(schedules), path)
	return nil
}
