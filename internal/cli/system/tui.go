package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx.Schedules, ctx.Ledger, userID, ctx.Now), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal view failed: %w", err)
	}
	return nil
}
