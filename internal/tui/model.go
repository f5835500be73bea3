package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medweek/internal/countdown"
	"github.com/julianstephens/medweek/internal/ledger"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/schedules"
)

type SessionState int

const (
	StateWeek SessionState = iota
	StateConfirmDelete
)

// TickMsg drives the countdown refresh.
type TickMsg time.Time

type boardMsg struct {
	cards []schedules.Card
	now   time.Time
	err   error
}

type toggledMsg struct {
	drug    string
	weekday models.Weekday
	state   ledger.State
	err     error
}

type deletedMsg struct {
	drug string
	err  error
}

type Model struct {
	schedules *schedules.Service
	ledger    *ledger.Ledger
	userID    string
	clock     func() time.Time

	state SessionState
	keys  KeyMap
	help  help.Model

	cards []schedules.Card
	now   time.Time
	row   int
	col   int

	// busy is set while a toggle or delete is in flight; the cells are not
	// changed until the board has been fetched again.
	busy     bool
	loaded   bool
	status   string
	err      error
	quitting bool
	width    int
	height   int
}

// NewModel builds the weekly board for userID. clock supplies the current
// instant in the configured timezone.
func NewModel(svc *schedules.Service, l *ledger.Ledger, userID string, clock func() time.Time) Model {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	return Model{
		schedules: svc,
		ledger:    l,
		userID:    userID,
		clock:     clock,
		state:     StateWeek,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		now:       now,
		col:       models.FromTime(now.Weekday()).Index(),
	}
}

func (m Model) ShortHelp() []key.Binding {
	if m.state == StateConfirmDelete {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	if m.state == StateConfirmDelete {
		return [][]key.Binding{{m.keys.Confirm, m.keys.Cancel}}
	}
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchBoard(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(countdown.RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) fetchBoard() tea.Cmd {
	svc, userID, now := m.schedules, m.userID, m.clock()
	return func() tea.Msg {
		cards, err := svc.Board(context.Background(), userID, now)
		return boardMsg{cards: cards, now: now, err: err}
	}
}

func (m Model) toggle(card schedules.Card, wd models.Weekday) tea.Cmd {
	l, userID, now := m.ledger, m.userID, m.clock()
	return func() tea.Msg {
		state, err := l.Toggle(context.Background(), userID, card.Schedule.ID, wd, now)
		return toggledMsg{drug: card.Schedule.DrugName, weekday: wd, state: state, err: err}
	}
}

func (m Model) deleteSchedule(card schedules.Card) tea.Cmd {
	svc, userID := m.schedules, m.userID
	return func() tea.Msg {
		err := svc.Delete(context.Background(), userID, card.Schedule.ID)
		return deletedMsg{drug: card.Schedule.DrugName, err: err}
	}
}

func (m Model) selected() (schedules.Card, bool) {
	if m.row < 0 || m.row >= len(m.cards) {
		return schedules.Card{}, false
	}
	return m.cards[m.row], true
}
