package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Weekday is the stored identifier of a day of the week.
type Weekday string

const (
	Mon Weekday = "Mon"
	Tue Weekday = "Tue"
	Wed Weekday = "Wed"
	Thu Weekday = "Thu"
	Fri Weekday = "Fri"
	Sat Weekday = "Sat"
	Sun Weekday = "Sun"
)

// Week lists every weekday in display order (the week starts on Monday).
var Week = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var weekdayNames = map[string]Weekday{
	"mon":       Mon,
	"monday":    Mon,
	"tue":       Tue,
	"tues":      Tue,
	"tuesday":   Tue,
	"wed":       Wed,
	"wednesday": Wed,
	"thu":       Thu,
	"thur":      Thu,
	"thurs":     Thu,
	"thursday":  Thu,
	"fri":       Fri,
	"friday":    Fri,
	"sat":       Sat,
	"saturday":  Sat,
	"sun":       Sun,
	"sunday":    Sun,
}

// ParseWeekday parses a weekday name (short or full, any case) or a
// time.Weekday number (0=Sunday, 6=Saturday).
func ParseWeekday(s string) (Weekday, error) {
	part := strings.TrimSpace(strings.ToLower(s))
	if wd, ok := weekdayNames[part]; ok {
		return wd, nil
	}
	num, err := strconv.Atoi(part)
	if err == nil && num >= 0 && num <= 6 {
		return FromTime(time.Weekday(num)), nil
	}
	return "", fmt.Errorf("invalid weekday: %s", s)
}

// ParseWeekdays parses a comma-separated list of weekdays. An empty string
// yields an empty set.
func ParseWeekdays(s string) ([]Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return []Weekday{}, nil
	}
	var days []Weekday
	for _, part := range strings.Split(s, ",") {
		wd, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, wd)
	}
	return NormalizeWeekdays(days), nil
}

// FromTime converts a time.Weekday.
func FromTime(wd time.Weekday) Weekday {
	// time.Weekday counts from Sunday; Week counts from Monday.
	return Week[(int(wd)+6)%7]
}

// Time converts to a time.Weekday.
func (w Weekday) Time() time.Weekday {
	return time.Weekday((w.Index() + 1) % 7)
}

// Index is the zero-based position of the day in a Monday-start week,
// or -1 for an unknown identifier.
func (w Weekday) Index() int {
	return slices.Index(Week, w)
}

// Valid reports whether w is one of the seven identifiers.
func (w Weekday) Valid() bool {
	return w.Index() >= 0
}

func (w Weekday) String() string {
	return string(w)
}

// NormalizeWeekdays removes duplicates and unknown identifiers and orders the
// result Monday first.
func NormalizeWeekdays(days []Weekday) []Weekday {
	out := make([]Weekday, 0, len(days))
	for _, wd := range Week {
		if slices.Contains(days, wd) {
			out = append(out, wd)
		}
	}
	return out
}

// FormatWeekdays renders a set as a comma-separated list ("Mon,Wed,Fri").
func FormatWeekdays(days []Weekday) string {
	parts := make([]string, len(days))
	for i, wd := range days {
		parts[i] = string(wd)
	}
	return strings.Join(parts, ",")
}
