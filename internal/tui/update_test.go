package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medweek/internal/ledger"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/reminder"
	"github.com/julianstephens/medweek/internal/schedules"
	"github.com/julianstephens/medweek/internal/testutil"
)

const user = "user-1"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, cmd := m.Update(cmd())
	return next.(Model), cmd
}

func setup(t *testing.T, now time.Time) (Model, *fakeClock, *testutil.FailingStore, models.Schedule) {
	t.Helper()
	store := &testutil.FailingStore{Provider: testutil.NewTestStore(t)}
	l := ledger.New(store)
	svc := schedules.New(store, l, reminder.Nop{})

	s, err := svc.Create(context.Background(), user, "Aspirin", models.MustTimeOfDay("08:00"), []models.Weekday{models.Mon, models.Wed}, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock := &fakeClock{now: now}
	m := NewModel(svc, l, user, clock.Now)
	m, _ = run(t, m, m.fetchBoard())
	return m, clock, store, s
}

// Wednesday 2026-01-07 07:00 UTC.
var wednesday = time.Date(2026, time.January, 7, 7, 0, 0, 0, time.UTC)

func TestNewModel_StartsOnToday(t *testing.T) {
	m, _, _, _ := setup(t, wednesday)
	if m.col != models.Wed.Index() {
		t.Errorf("cursor column = %d, want %d", m.col, models.Wed.Index())
	}
	if len(m.cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(m.cards))
	}
	if !strings.Contains(m.View(), "Aspirin") {
		t.Errorf("view does not show the schedule:\n%s", m.View())
	}
}

func TestToggle_RefetchesBeforeRendering(t *testing.T) {
	m, _, _, s := setup(t, wednesday)

	next, cmd := m.Update(keyMsg("x"))
	m = next.(Model)
	if !m.busy {
		t.Error("expected model to be busy while the toggle is in flight")
	}
	if m.Taken(0, models.Wed.Index()) {
		t.Error("cell must not show taken before the write returns")
	}

	// A second toggle while the first is in flight is ignored.
	if _, again := m.Update(keyMsg("x")); again != nil {
		t.Error("expected no command while busy")
	}

	m, cmd = run(t, m, cmd) // toggledMsg -> fetch
	if m.Taken(0, models.Wed.Index()) {
		t.Error("cell must not show taken before the board is fetched again")
	}
	m, _ = run(t, m, cmd) // boardMsg
	if !m.Taken(0, models.Wed.Index()) {
		t.Error("expected Wednesday taken after refetch")
	}
	if m.busy {
		t.Error("expected busy cleared after refetch")
	}
	if !strings.Contains(m.status, "taken") {
		t.Errorf("status = %q", m.status)
	}

	taken, err := m.ledger.IsTaken(context.Background(), user, s.ID, models.Wed, wednesday)
	if err != nil || !taken {
		t.Errorf("expected storage to hold the entry, got %v (err %v)", taken, err)
	}
}

func TestToggle_InactiveDayDoesNotWrite(t *testing.T) {
	m, _, _, _ := setup(t, wednesday)

	next, _ := m.Update(keyMsg("l")) // Thursday
	m = next.(Model)
	next, cmd := m.Update(keyMsg("x"))
	m = next.(Model)
	if cmd != nil {
		t.Error("expected no storage command for an inactive day")
	}
	if !strings.Contains(m.status, "not scheduled on Thu") {
		t.Errorf("status = %q", m.status)
	}
}

func TestToggle_StorageFailureShowsError(t *testing.T) {
	m, _, store, _ := setup(t, wednesday)
	store.FailWrites = true

	next, cmd := m.Update(keyMsg("x"))
	m = next.(Model)
	next, cmd = m.Update(cmd())
	m = next.(Model)
	if cmd != nil {
		t.Error("expected no refetch after a failed toggle")
	}
	if m.err == nil || m.busy {
		t.Errorf("expected error and idle model, got err=%v busy=%v", m.err, m.busy)
	}
	if m.Taken(0, models.Wed.Index()) {
		t.Error("failed toggle must not mark the cell")
	}
}

func TestTick_RefreshesCountdownWithoutStorage(t *testing.T) {
	m, clock, store, _ := setup(t, wednesday)
	if got := m.cards[0].CountdownLabel(); got != "1h 0m left" {
		t.Fatalf("initial countdown = %q", got)
	}

	store.FailReads = true
	clock.now = wednesday.Add(30 * time.Minute)
	next, _ := m.Update(TickMsg(clock.now))
	m = next.(Model)

	if got := m.cards[0].CountdownLabel(); got != "0h 30m left" {
		t.Errorf("countdown after tick = %q, want 0h 30m left", got)
	}
	if m.busy || m.err != nil {
		t.Errorf("tick within the week must not fetch, busy=%v err=%v", m.busy, m.err)
	}
}

func TestTick_NewWeekRefetches(t *testing.T) {
	m, clock, _, _ := setup(t, wednesday)
	if _, err := m.ledger.Toggle(context.Background(), user, m.cards[0].Schedule.ID, models.Mon, wednesday); err != nil {
		t.Fatal(err)
	}
	m, _ = run(t, m, m.fetchBoard())
	if !m.Taken(0, models.Mon.Index()) {
		t.Fatal("expected Monday taken this week")
	}

	clock.now = wednesday.AddDate(0, 0, 5) // next Monday
	next, cmd := m.Update(TickMsg(clock.now))
	m = next.(Model)
	if !m.busy {
		t.Fatal("expected a refetch when the week rolls over")
	}

	// The batch holds the fetch and the next tick; only the fetch is run.
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) == 0 {
		t.Fatalf("expected a batch, got %T", cmd())
	}
	m, _ = run(t, m, batch[0])
	if m.Taken(0, models.Mon.Index()) {
		t.Error("expected the new week to start untaken")
	}
}

func TestDelete_ConfirmThenRefetch(t *testing.T) {
	m, _, _, _ := setup(t, wednesday)

	next, _ := m.Update(keyMsg("d"))
	m = next.(Model)
	if m.state != StateConfirmDelete {
		t.Fatal("expected confirmation state")
	}
	next, _ = m.Update(keyMsg("n"))
	m = next.(Model)
	if m.state != StateWeek || len(m.cards) != 1 {
		t.Fatal("expected cancel to keep the schedule")
	}

	next, _ = m.Update(keyMsg("d"))
	m = next.(Model)
	next, cmd := m.Update(keyMsg("y"))
	m = next.(Model)
	m, cmd = run(t, m, cmd) // deletedMsg -> fetch
	m, _ = run(t, m, cmd)
	if len(m.cards) != 0 {
		t.Errorf("expected no cards after delete, got %d", len(m.cards))
	}
	if !strings.Contains(m.View(), "No schedules yet") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m, _, _, _ := setup(t, wednesday)
	next, cmd := m.Update(keyMsg("q"))
	if !next.(Model).quitting || cmd == nil {
		t.Error("expected quit")
	}
}
