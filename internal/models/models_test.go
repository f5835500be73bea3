package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/julianstephens/medweek/internal/errors"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input   string
		want    Weekday
		wantErr bool
	}{
		{input: "Mon", want: Mon},
		{input: "monday", want: Mon},
		{input: " WED ", want: Wed},
		{input: "thurs", want: Thu},
		{input: "0", want: Sun},
		{input: "6", want: Sat},
		{input: "7", wantErr: true},
		{input: "funday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWeekday(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekday(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWeekday(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseWeekdaysNormalizes(t *testing.T) {
	got, err := ParseWeekdays("fri, mon,Wed,monday")
	if err != nil {
		t.Fatalf("ParseWeekdays() error = %v", err)
	}
	if FormatWeekdays(got) != "Mon,Wed,Fri" {
		t.Errorf("ParseWeekdays() = %v, want Mon,Wed,Fri", got)
	}

	empty, err := ParseWeekdays("  ")
	if err != nil || len(empty) != 0 {
		t.Errorf("ParseWeekdays(blank) = %v, %v; want empty set", empty, err)
	}
}

func TestWeekdayTimeRoundTrip(t *testing.T) {
	for _, wd := range Week {
		if FromTime(wd.Time()) != wd {
			t.Errorf("FromTime(%v.Time()) = %v", wd, FromTime(wd.Time()))
		}
	}
	if Sun.Time() != time.Sunday || Mon.Time() != time.Monday {
		t.Errorf("unexpected mapping: Sun=%v Mon=%v", Sun.Time(), Mon.Time())
	}
	if Weekday("Xyz").Valid() {
		t.Error("unknown weekday reported valid")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "08:00", want: "08:00"},
		{input: "8:05", want: "08:05"},
		{input: "23:59", want: "23:59"},
		{input: "07:30:00", want: "07:30"},
		{input: "24:00", wantErr: true},
		{input: "noon", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeOfDayOnKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	date := time.Date(2026, 1, 7, 23, 10, 0, 0, loc)
	got := MustTimeOfDay("08:30").On(date)
	want := time.Date(2026, 1, 7, 8, 30, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Errorf("On() = %v, want %v", got, want)
	}
}

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{
			name:     "valid",
			schedule: Schedule{DrugName: "Ibuprofen", Time: MustTimeOfDay("08:00"), Days: []Weekday{Mon}},
		},
		{
			name:     "blank name",
			schedule: Schedule{DrugName: "   ", Time: MustTimeOfDay("08:00"), Days: []Weekday{Mon}},
			wantErr:  true,
		},
		{
			name:     "no days",
			schedule: Schedule{DrugName: "Ibuprofen", Time: MustTimeOfDay("08:00"), Days: []Weekday{}},
			wantErr:  true,
		},
		{
			name:     "unknown day",
			schedule: Schedule{DrugName: "Ibuprofen", Time: MustTimeOfDay("08:00"), Days: []Weekday{"Xyz"}},
			wantErr:  true,
		},
		{
			name:     "time out of range",
			schedule: Schedule{DrugName: "Ibuprofen", Time: TimeOfDay{Hour: 25}, Days: []Weekday{Mon}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrInvalidSchedule) {
				t.Errorf("expected ErrInvalidSchedule, got %v", err)
			}
		})
	}
}

func TestScheduleJSONUsesStorageForms(t *testing.T) {
	s := Schedule{ID: "1", DrugName: "Aspirin", Time: MustTimeOfDay("07:05"), Days: []Weekday{Mon, Fri}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["scheduled_time"] != "07:05" {
		t.Errorf("scheduled_time = %v, want 07:05", decoded["scheduled_time"])
	}
}

func TestNormalizeDrugName(t *testing.T) {
	tests := map[string]string{
		"  Ibuprofen ":      "ibuprofen",
		"Vitamin   D3":      "vitamin d3",
		"ADVIL\tLiqui-Gels": "advil liqui-gels",
	}
	for input, want := range tests {
		if got := NormalizeDrugName(input); got != want {
			t.Errorf("NormalizeDrugName(%q) = %q, want %q", input, got, want)
		}
	}
}
