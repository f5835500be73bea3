// Package calendar maps recurring weekly schedules onto concrete dates and
// instants. Every function takes the reference instant explicitly; the
// location of that instant defines "local" for all day arithmetic.
package calendar

import (
	"time"

	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/models"
)

// WeekWindow is the half-open span [Start, End) of a Monday-start calendar week.
type WeekWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window.
func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ContainsDate reports whether a YYYY-MM-DD date falls within the window.
// Dates compare lexically, so no parsing or location is involved.
func (w WeekWindow) ContainsDate(date string) bool {
	start, end := w.DateRange()
	return date >= start && date < end
}

// DateRange returns the window bounds as YYYY-MM-DD strings, end exclusive.
func (w WeekWindow) DateRange() (string, string) {
	return w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat)
}

// Day returns midnight of the i-th day of the window (0 = Monday).
func (w WeekWindow) Day(i int) time.Time {
	return addDays(w.Start, i)
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MondayOf returns local midnight of the Monday that starts t's week.
func MondayOf(t time.Time) time.Time {
	return addDays(StartOfDay(t), -models.FromTime(t.Weekday()).Index())
}

// CurrentWeek returns the window containing now. It is recomputed on every
// call because now may cross a week boundary between calls.
func CurrentWeek(now time.Time) WeekWindow {
	start := MondayOf(now)
	return WeekWindow{Start: start, End: addDays(start, constants.DaysInWeek)}
}

// DateOfWeekday returns local midnight of the day in ref's week whose weekday
// is wd. The result may lie in the past: on a Sunday, Mon resolves to the
// Monday six days earlier, not the next Monday.
func DateOfWeekday(wd models.Weekday, ref time.Time) time.Time {
	return addDays(MondayOf(ref), wd.Index())
}

// DateStringOfWeekday is DateOfWeekday formatted as YYYY-MM-DD.
func DateStringOfWeekday(wd models.Weekday, ref time.Time) string {
	return DateOfWeekday(wd, ref).Format(constants.DateFormat)
}

// NextOccurrence searches today through today+7 for the first instant at tod
// on an active weekday that is strictly after now. It reports false when days
// is empty.
func NextOccurrence(tod models.TimeOfDay, days []models.Weekday, now time.Time) (time.Time, bool) {
	if len(days) == 0 {
		return time.Time{}, false
	}

	active := make(map[time.Weekday]bool, len(days))
	for _, wd := range days {
		if wd.Valid() {
			active[wd.Time()] = true
		}
	}

	today := StartOfDay(now)
	for i := 0; i <= constants.NextOccurrenceHorizonDays; i++ {
		candidate := tod.On(addDays(today, i))
		if active[candidate.Weekday()] && candidate.After(now) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// addDays moves by calendar days rather than 24h multiples so that DST
// transitions never shift the date.
func addDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
