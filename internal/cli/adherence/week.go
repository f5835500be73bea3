package adherence

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/medweek/internal/calendar"
	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/schedules"
)

const (
	markTaken   = "✓"
	markPending = "·"
	markOff     = ""
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// WeekCmd prints the current week's adherence grid.
type WeekCmd struct{}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	bg := ctx.Context()
	userID, err := ctx.User(bg)
	if err != nil {
		return err
	}

	now := ctx.Now()
	cards, err := ctx.Schedules.Board(bg, userID, now)
	if err != nil {
		return fmt.Errorf("failed to load week: %w", err)
	}

	ctx.Printf("Week of %s\n", calendar.MondayOf(now).Format(constants.DateFormat))
	if len(cards) == 0 {
		ctx.Println("No schedules found")
		return nil
	}

	ctx.Println(RenderWeek(cards))
	return nil
}

// RenderWeek lays the cards out as a drug-by-weekday table.
func RenderWeek(cards []schedules.Card) string {
	headers := []string{"Drug", "Time"}
	for _, wd := range models.Week {
		headers = append(headers, string(wd))
	}
	headers = append(headers, "Taken", "Next")

	rows := make([][]string, 0, len(cards))
	for _, card := range cards {
		row := []string{card.Schedule.DrugName, card.Schedule.Time.String()}
		for _, cell := range card.Days {
			row = append(row, dayMark(cell))
		}
		row = append(row,
			fmt.Sprintf("%d/%d", card.Summary.Taken, card.Summary.Due),
			card.CountdownLabel(),
		)
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func dayMark(cell schedules.DayCell) string {
	switch {
	case cell.Taken:
		return markTaken
	case cell.Active:
		return markPending
	default:
		return markOff
	}
}
