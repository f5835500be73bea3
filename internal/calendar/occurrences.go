package calendar

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/medweek/internal/models"
)

var rruleWeekdays = map[models.Weekday]rrule.Weekday{
	models.Mon: rrule.MO,
	models.Tue: rrule.TU,
	models.Wed: rrule.WE,
	models.Thu: rrule.TH,
	models.Fri: rrule.FR,
	models.Sat: rrule.SA,
	models.Sun: rrule.SU,
}

// Rule builds the weekly recurrence rule for a schedule anchored at dtstart.
func Rule(tod models.TimeOfDay, days []models.Weekday, dtstart time.Time) (*rrule.RRule, error) {
	byDay := make([]rrule.Weekday, 0, len(days))
	for _, wd := range models.NormalizeWeekdays(days) {
		byDay = append(byDay, rruleWeekdays[wd])
	}
	return rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Wkst:      rrule.MO,
		Byweekday: byDay,
		Byhour:    []int{tod.Hour},
		Byminute:  []int{tod.Minute},
		Bysecond:  []int{0},
	})
}

// Occurrences expands every instant at tod on an active weekday within
// [from, to), in from's location.
func Occurrences(tod models.TimeOfDay, days []models.Weekday, from, to time.Time) ([]time.Time, error) {
	if len(days) == 0 || !to.After(from) {
		return nil, nil
	}

	r, err := Rule(tod, days, StartOfDay(from))
	if err != nil {
		return nil, err
	}

	var out []time.Time
	for _, t := range r.Between(from, to, true) {
		if t.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}
