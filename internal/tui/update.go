package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/logger"
	"github.com/julianstephens/medweek/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()

	case boardMsg:
		m.busy = false
		if msg.err != nil {
			// Keep the last good board on screen; its cells may be out of date
			m.err = msg.err
			logger.Error("Failed to load weekly board", "error", msg.err)
			return m, nil
		}
		m.err = nil
		m.loaded = true
		m.cards = msg.cards
		m.now = msg.now
		m.clampCursor()
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("%s %s on %s", msg.drug, msg.state, msg.weekday)
		return m, m.fetchBoard()

	case deletedMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Deleted %s", msg.drug)
		return m, m.fetchBoard()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && m.state == StateWeek {
			m.quitting = true
			return m, tea.Quit
		}
		if m.state == StateConfirmDelete {
			return m.handleConfirmDelete(msg)
		}
		return m.handleWeekKeys(msg)
	}

	return m, nil
}

// handleTick recomputes every countdown from the fetched cards. Storage is
// only consulted when the week has rolled over.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	now := m.clock()
	m.now = now
	stale := false
	for i := range m.cards {
		m.cards[i].Refresh(now)
		if m.cards[i].Stale(now) {
			stale = true
		}
	}
	if stale && !m.busy {
		m.busy = true
		return m, tea.Batch(m.fetchBoard(), tick())
	}
	return m, tick()
}

func (m Model) handleWeekKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(m.cards)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < constants.DaysInWeek-1 {
			m.col++
		}
	case key.Matches(msg, m.keys.Today):
		m.col = models.FromTime(m.clock().Weekday()).Index()
	case key.Matches(msg, m.keys.Refresh):
		if !m.busy {
			m.busy = true
			return m, m.fetchBoard()
		}
	case key.Matches(msg, m.keys.Toggle):
		return m.startToggle()
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok && !m.busy {
			m.state = StateConfirmDelete
		}
	}
	return m, nil
}

func (m Model) startToggle() (tea.Model, tea.Cmd) {
	card, ok := m.selected()
	if !ok || m.busy {
		return m, nil
	}
	cell := card.Days[m.col]
	if !cell.Active {
		m.status = fmt.Sprintf("%s is not scheduled on %s", card.Schedule.DrugName, cell.Weekday)
		return m, nil
	}
	m.busy = true
	m.status = ""
	return m, m.toggle(card, cell.Weekday)
}

func (m Model) handleConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.state = StateWeek
		card, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.deleteSchedule(card)
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.state = StateWeek
	}
	return m, nil
}

func (m *Model) clampCursor() {
	if m.row >= len(m.cards) {
		m.row = len(m.cards) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// Taken reports whether the fetched board shows schedule row as taken on
// day of the week (0 is Monday).
func (m Model) Taken(row, day int) bool {
	if row < 0 || row >= len(m.cards) || day < 0 || day >= len(m.cards[row].Days) {
		return false
	}
	return m.cards[row].Days[day].Taken
}
