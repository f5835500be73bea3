package reminder

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/julianstephens/medweek/internal/models"
)

func TestSpec(t *testing.T) {
	tests := []struct {
		name    string
		r       Reminder
		want    string
		wantErr bool
	}{
		{
			name: "weekdays in cron numbering",
			r:    Reminder{ScheduleID: "s", Time: models.MustTimeOfDay("08:30"), Days: []models.Weekday{models.Fri, models.Mon, models.Wed}},
			want: "30 8 * * 1,3,5",
		},
		{
			name: "sunday is zero",
			r:    Reminder{ScheduleID: "s", Time: models.MustTimeOfDay("21:05"), Days: []models.Weekday{models.Sun}},
			want: "5 21 * * 0",
		},
		{
			name:    "no days",
			r:       Reminder{ScheduleID: "s", Time: models.MustTimeOfDay("08:00")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Spec(tt.r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Spec() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Spec() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCronSchedulerArmAndCancel(t *testing.T) {
	ctx := context.Background()
	c := NewCronScheduler(time.UTC, nil)

	r := Reminder{ScheduleID: "s1", DrugName: "a", Time: models.MustTimeOfDay("08:00"), Days: []models.Weekday{models.Wed}}
	h, err := c.Arm(ctx, r)
	if err != nil {
		t.Fatalf("Arm() error = %v", err)
	}
	if h.Next.IsZero() || h.Next.Weekday() != time.Wednesday || h.Next.Hour() != 8 {
		t.Errorf("Arm() next = %v, want a Wednesday at 08:00", h.Next)
	}

	// Re-arming replaces rather than adding a second entry.
	r.Days = []models.Weekday{models.Fri}
	if _, err := c.Arm(ctx, r); err != nil {
		t.Fatal(err)
	}
	if got := c.Armed(); len(got) != 1 {
		t.Fatalf("Armed() = %v, want one entry", got)
	}
	if next, ok := c.Next("s1"); !ok || next.Weekday() != time.Friday {
		t.Errorf("Next() = %v, %v; want a Friday", next, ok)
	}
	if n := len(c.cron.Entries()); n != 1 {
		t.Errorf("cron has %d entries, want 1", n)
	}

	// Arming with no days removes the entry.
	r.Days = nil
	if _, err := c.Arm(ctx, r); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Next("s1"); ok {
		t.Error("dormant schedule should have no entry")
	}

	if err := c.Cancel(ctx, "unknown"); err != nil {
		t.Errorf("Cancel(unknown) error = %v", err)
	}
}

func TestCronSchedulerSync(t *testing.T) {
	ctx := context.Background()
	c := NewCronScheduler(time.UTC, nil)

	stale := Reminder{ScheduleID: "old", Time: models.MustTimeOfDay("07:00"), Days: []models.Weekday{models.Mon}}
	if _, err := c.Arm(ctx, stale); err != nil {
		t.Fatal(err)
	}

	schedules := []models.Schedule{
		{ID: "a", DrugName: "a", Time: models.MustTimeOfDay("08:00"), Days: []models.Weekday{models.Mon}},
		{ID: "b", DrugName: "b", Time: models.MustTimeOfDay("09:00"), Days: []models.Weekday{models.Tue, models.Thu}},
		{ID: "dormant", DrugName: "c", Time: models.MustTimeOfDay("10:00")},
	}
	armed, err := c.Sync(ctx, schedules)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if armed != 2 {
		t.Errorf("Sync() armed %d, want 2", armed)
	}

	got := c.Armed()
	slices.Sort(got)
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Armed() = %v, want [a b]", got)
	}
}

type recordingDeliverer struct {
	err   error
	calls []string
}

func (r *recordingDeliverer) Deliver(_ context.Context, rem Reminder) error {
	r.calls = append(r.calls, rem.ScheduleID)
	return r.err
}

func TestFallback(t *testing.T) {
	failing := &recordingDeliverer{err: errors.New("tray down")}
	ok := &recordingDeliverer{}
	f := Fallback{failing, ok}

	if err := f.Deliver(context.Background(), Reminder{ScheduleID: "s1"}); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(failing.calls) != 1 || len(ok.calls) != 1 {
		t.Errorf("calls = %v / %v, want one each", failing.calls, ok.calls)
	}

	if err := (Fallback{failing}).Deliver(context.Background(), Reminder{}); err == nil {
		t.Error("Fallback with only failing deliverers should fail")
	}
}

func TestNop(t *testing.T) {
	var p Port = Nop{}
	h, err := p.Arm(context.Background(), Reminder{ScheduleID: "s1"})
	if err != nil || h.ScheduleID != "s1" {
		t.Errorf("Nop.Arm() = %+v, %v", h, err)
	}
	if err := p.Cancel(context.Background(), "s1"); err != nil {
		t.Errorf("Nop.Cancel() error = %v", err)
	}
}
