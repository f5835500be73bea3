package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/schedules"
)

const (
	drugWidth = 18
	cellWidth = 6
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.viewWeek()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTitle(),
		content,
		m.viewStatus(),
		m.help.View(m),
	))
}

func (m Model) viewTitle() string {
	title := "medweek"
	if len(m.cards) > 0 {
		title = fmt.Sprintf("medweek · week of %s", m.cards[0].Week.Start.Format(constants.DateFormat))
	}
	return titleStyle.Render(title)
}

func (m Model) viewWeek() string {
	if !m.loaded {
		if m.err != nil {
			return ""
		}
		return statusStyle.Render("Loading...")
	}
	if len(m.cards) == 0 {
		return statusStyle.Render("No schedules yet. Add one with 'medweek schedule add'.")
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	for i, card := range m.cards {
		b.WriteString(m.viewRow(i, card))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewHeader() string {
	cells := []string{headerStyle.Width(drugWidth).Render("Drug")}
	week := m.cards[0].Week
	for i, cell := range m.cards[0].Days {
		label := fmt.Sprintf("%s %02d", cell.Weekday, week.Day(i).Day())
		cells = append(cells, headerStyle.Width(cellWidth+1).Render(label))
	}
	cells = append(cells, headerStyle.Render(" Taken  Next"))
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) viewRow(row int, card schedules.Card) string {
	name := fmt.Sprintf("%s %s", card.Schedule.Time, card.Schedule.DrugName)
	if r := []rune(name); len(r) > drugWidth-1 {
		name = string(r[:drugWidth-2]) + "…"
	}
	cells := []string{drugStyle.Width(drugWidth).Render(name)}

	for i, cell := range card.Days {
		mark, style := " ·  ", pendingStyle
		switch {
		case cell.Taken:
			mark, style = " ✓  ", takenStyle
		case !cell.Active:
			mark, style = " -  ", offStyle
		}
		if row == m.row && i == m.col {
			style = selectedStyle
		}
		cells = append(cells, style.Width(cellWidth).Render(mark)+" ")
	}

	summary := fmt.Sprintf(" %d/%d", card.Summary.Taken, card.Summary.Due)
	cells = append(cells, lipgloss.NewStyle().Width(7).Render(summary))
	cells = append(cells, countdownStyle.Render(card.CountdownLabel()))
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return dangerStyle.Render("Error: " + m.err.Error())
	case m.busy:
		return statusStyle.Render("Saving...")
	case m.status != "":
		return statusStyle.Render(m.status)
	default:
		return ""
	}
}

func (m Model) viewConfirmDelete() string {
	card, _ := m.selected()
	return lipgloss.JoinVertical(lipgloss.Left,
		dangerStyle.Render(fmt.Sprintf("Delete %s and its adherence history?", card.Schedule.DrugName)),
		"",
		"[y] Yes",
		"[n] No",
	)
}
