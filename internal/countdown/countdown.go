// Package countdown derives the "time remaining until next dose" display
// value for a schedule. Everything here is a pure function of the schedule
// and now; callers recompute on a timer rather than caching results.
package countdown

import (
	"fmt"
	"time"

	"github.com/julianstephens/medweek/internal/calendar"
	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/models"
)

// RefreshInterval is how often a view should recompute its countdowns.
const RefreshInterval = constants.CountdownRefreshInterval

// Countdown is the time until a schedule's next occurrence, bucketed for
// display.
type Countdown struct {
	Next      time.Time
	Remaining time.Duration
	Days      int
	Hours     int
	Minutes   int
}

// Until returns the countdown to the schedule's next occurrence. It reports
// false when the schedule has no active days.
func Until(s models.Schedule, now time.Time) (Countdown, bool) {
	next, ok := calendar.NextOccurrence(s.Time, s.Days, now)
	if !ok {
		return Countdown{}, false
	}
	return FromDuration(next, next.Sub(now)), true
}

// FromDuration buckets a remaining duration. At or beyond 24h only whole days
// are reported; below that, hours and minutes (floored).
func FromDuration(next time.Time, d time.Duration) Countdown {
	c := Countdown{Next: next, Remaining: d}
	if d >= 24*time.Hour {
		c.Days = int(d / (24 * time.Hour))
		return c
	}
	c.Hours = int(d / time.Hour)
	c.Minutes = int((d % time.Hour) / time.Minute)
	return c
}

// InDays reports whether the countdown is displayed in whole days.
func (c Countdown) InDays() bool {
	return c.Remaining >= 24*time.Hour
}

// Label renders the countdown as "3d left" or "5h 12m left".
func (c Countdown) Label() string {
	if c.InDays() {
		return fmt.Sprintf("%dd left", c.Days)
	}
	return fmt.Sprintf("%dh %dm left", c.Hours, c.Minutes)
}

// Label is Until followed by Label, with an empty string for schedules that
// have no next occurrence.
func Label(s models.Schedule, now time.Time) string {
	c, ok := Until(s, now)
	if !ok {
		return ""
	}
	return c.Label()
}
