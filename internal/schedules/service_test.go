package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/julianstephens/medweek/internal/errors"
	"github.com/julianstephens/medweek/internal/ledger"
	"github.com/julianstephens/medweek/internal/models"
	"github.com/julianstephens/medweek/internal/reminder"
	"github.com/julianstephens/medweek/internal/storage/sqlite"
	"github.com/julianstephens/medweek/internal/testutil"
)

const user = "user-1"

// 2026-01-05 is a Monday.
func day(d, h, m int) time.Time {
	return time.Date(2026, time.January, d, h, m, 0, 0, time.UTC)
}

type fakePort struct {
	armed     map[string]reminder.Reminder
	cancelled []string
	fail      bool
}

func newFakePort() *fakePort {
	return &fakePort{armed: make(map[string]reminder.Reminder)}
}

func (f *fakePort) Arm(_ context.Context, r reminder.Reminder) (reminder.Handle, error) {
	if f.fail {
		return reminder.Handle{}, errors.New("port down")
	}
	f.armed[r.ScheduleID] = r
	return reminder.Handle{ScheduleID: r.ScheduleID}, nil
}

func (f *fakePort) Cancel(_ context.Context, scheduleID string) error {
	if f.fail {
		return errors.New("port down")
	}
	delete(f.armed, scheduleID)
	f.cancelled = append(f.cancelled, scheduleID)
	return nil
}

func newService(t *testing.T) (*Service, *sqlite.Store, *fakePort) {
	t.Helper()
	store := testutil.NewTestStore(t)
	port := newFakePort()
	return New(store, ledger.New(store), port), store, port
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _, port := newService(t)

	s, err := svc.Create(ctx, user, "  Aspirin ", models.MustTimeOfDay("08:00"), []models.Weekday{models.Fri, models.Mon, models.Mon}, day(5, 8, 0))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s.ID == "" || s.DrugName != "Aspirin" {
		t.Errorf("Create() = %+v", s)
	}
	if models.FormatWeekdays(s.Days) != "Mon,Fri" {
		t.Errorf("Days = %v, want normalized Mon,Fri", s.Days)
	}
	if r, ok := port.armed[s.ID]; !ok || r.Time.String() != "08:00" {
		t.Errorf("reminder not armed for new schedule: %+v", port.armed)
	}
}

func TestCreateRejectsBeforeWrite(t *testing.T) {
	ctx := context.Background()
	svc, store, port := newService(t)

	tests := []struct {
		name string
		drug string
		days []models.Weekday
	}{
		{"empty days", "Aspirin", []models.Weekday{}},
		{"nil days", "Aspirin", nil},
		{"blank name", "   ", []models.Weekday{models.Mon}},
		{"unknown weekday", "Aspirin", []models.Weekday{"Funday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, user, tt.drug, models.MustTimeOfDay("08:00"), tt.days, day(5, 8, 0))
			if !apperrors.Is(err, apperrors.ErrInvalidSchedule) {
				t.Errorf("Create() error = %v, want ErrInvalidSchedule", err)
			}
		})
	}

	rows, err := store.ListSchedules(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("rejected creates wrote %d rows", len(rows))
	}
	if len(port.armed) != 0 {
		t.Errorf("rejected creates armed %d reminders", len(port.armed))
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, store, port := newService(t)

	s, err := svc.Create(ctx, user, "Aspirin", models.MustTimeOfDay("08:00"), []models.Weekday{models.Mon, models.Wed}, day(5, 8, 0))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ledger.Toggle(ctx, user, s.ID, models.Mon, day(5, 9, 0)); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, user, s.ID, models.MustTimeOfDay("21:15"), []models.Weekday{models.Tue}, day(5, 10, 0))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Time.String() != "21:15" || models.FormatWeekdays(updated.Days) != "Tue" {
		t.Errorf("Update() = %+v", updated)
	}
	if port.armed[s.ID].Time.String() != "21:15" {
		t.Errorf("reminder not re-armed: %+v", port.armed[s.ID])
	}

	// History stays even though Monday is no longer active.
	if n, _ := store.CountAdherenceEntries(ctx, user, s.ID); n != 1 {
		t.Errorf("CountAdherenceEntries() = %d after update, want 1", n)
	}

	if _, err := svc.Update(ctx, user, "missing", models.MustTimeOfDay("08:00"), []models.Weekday{models.Mon}, day(5, 10, 0)); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateToNoDaysGoesDormant(t *testing.T) {
	ctx := context.Background()
	svc, _, port := newService(t)

	s, err := svc.Create(ctx, user, "Aspirin", models.MustTimeOfDay("08:00"), []models.Weekday{models.Mon}, day(5, 8, 0))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, user, s.ID, models.MustTimeOfDay("08:00"), nil, day(5, 9, 0))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Active() {
		t.Error("schedule with no days should be dormant")
	}
	if _, ok := port.armed[s.ID]; ok {
		t.Error("dormant schedule should have no reminder")
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, store, port := newService(t)

	s, err := svc.Create(ctx, user, "Aspirin", models.MustTimeOfDay("08:00"), models.Week, day(5, 8, 0))
	if err != nil {
		t.Fatal(err)
	}
	for _, at := range []time.Time{day(1, 9, 0), day(5, 9, 0), day(6, 9, 0)} {
		if _, err := svc.ledger.Toggle(ctx, user, s.ID, models.FromTime(at.Weekday()), at); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := store.CountAdherenceEntries(ctx, user, s.ID); n != 3 {
		t.Fatalf("seeded %d entries, want 3", n)
	}

	if err := svc.Delete(ctx, user, s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n, _ := store.CountAdherenceEntries(ctx, user, s.ID); n != 0 {
		t.Errorf("CountAdherenceEntries() = %d after delete, want 0", n)
	}
	if _, ok := port.armed[s.ID]; ok {
		t.Error("reminder still armed after delete")
	}

	if err := svc.Delete(ctx, user, s.ID); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestReminderFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	svc, store, port := newService(t)
	port.fail = true

	s, err := svc.Create(ctx, user, "Aspirin", models.MustTimeOfDay("08:00"), []models.Weekday{models.Mon}, day(5, 8, 0))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.GetSchedule(ctx, user, s.ID); err != nil {
		t.Errorf("schedule not persisted: %v", err)
	}
	if err := svc.Delete(ctx, user, s.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestListOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	create := func(name, tod string, at time.Time) {
		t.Helper()
		if _, err := svc.Create(ctx, user, name, models.MustTimeOfDay(tod), []models.Weekday{models.Mon}, at); err != nil {
			t.Fatal(err)
		}
	}
	create("evening", "20:00", day(5, 8, 0))
	create("first-tie", "08:00", day(5, 8, 1))
	create("early", "06:30", day(5, 8, 2))
	create("second-tie", "08:00", day(5, 8, 3))

	got, err := svc.List(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"early", "first-tie", "second-tie", "evening"}
	for i, name := range want {
		if got[i].DrugName != name {
			t.Errorf("position %d = %s, want %s", i, got[i].DrugName, name)
		}
	}
}

func TestHasDrug(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	if _, err := svc.Create(ctx, user, "Vitamin  D", models.MustTimeOfDay("08:00"), []models.Weekday{models.Mon}, day(5, 8, 0)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"vitamin d", true},
		{"  VITAMIN D ", true},
		{"vitamin c", false},
	}
	for _, tt := range tests {
		got, err := svc.HasDrug(ctx, user, tt.name)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("HasDrug(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	other, err := svc.HasDrug(ctx, "user-2", "vitamin d")
	if err != nil || other {
		t.Errorf("HasDrug() for another user = %v, %v; want false", other, err)
	}
}

func TestStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	failing := &testutil.FailingStore{Provider: store, FailReads: true, FailWrites: true}
	svc := New(failing, nil, nil)

	if _, err := svc.Create(ctx, user, "a", models.MustTimeOfDay("08:00"), []models.Weekday{models.Mon}, day(5, 8, 0)); !apperrors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("Create() error = %v", err)
	}
	if _, err := svc.List(ctx, user); !apperrors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("List() error = %v", err)
	}
	if err := svc.Delete(ctx, user, "x"); !apperrors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := svc.Board(ctx, user, day(5, 8, 0)); !apperrors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("Board() error = %v", err)
	}
}
