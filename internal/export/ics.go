// Package export renders schedules as an iCalendar feed so calendar apps can
// show dose times next to everything else.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/julianstephens/medweek/internal/calendar"
	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/models"
)

// EventDuration is the length of each dose event.
const EventDuration = 15 * time.Minute

const localTimeFormat = "20060102T150405"

var icalDays = map[models.Weekday]string{
	models.Mon: "MO",
	models.Tue: "TU",
	models.Wed: "WE",
	models.Thu: "TH",
	models.Fri: "FR",
	models.Sat: "SA",
	models.Sun: "SU",
}

// RRule renders the weekly recurrence for a set of days,
// e.g. "FREQ=WEEKLY;WKST=MO;BYDAY=MO,WE".
func RRule(days []models.Weekday) string {
	byDay := make([]string, 0, len(days))
	for _, wd := range models.NormalizeWeekdays(days) {
		byDay = append(byDay, icalDays[wd])
	}
	return "FREQ=WEEKLY;WKST=MO;BYDAY=" + strings.Join(byDay, ",")
}

// Calendar builds one recurring VEVENT per active schedule, anchored at its
// first occurrence in now's week. Times are written in now's location: with
// a TZID when the location has an IANA name, as floating local time
// otherwise.
func Calendar(schedules []models.Schedule, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(fmt.Sprintf("-//julianstephens//%s %s//EN", constants.AppName, constants.Version))

	week := calendar.CurrentWeek(now)
	tzid := tzidOf(now.Location())

	for _, s := range schedules {
		if !s.Active() {
			continue
		}
		occurrences, err := calendar.Occurrences(s.Time, s.Days, week.Start, week.End)
		if err != nil || len(occurrences) == 0 {
			continue
		}
		start := occurrences[0]

		event := cal.AddEvent(s.ID + "@" + constants.AppName)
		event.SetDtStampTime(now)
		if !s.CreatedAt.IsZero() {
			event.SetCreatedTime(s.CreatedAt)
		}
		if !s.UpdatedAt.IsZero() {
			event.SetModifiedAt(s.UpdatedAt)
		}
		setLocal(event, ical.ComponentPropertyDtStart, start, tzid)
		setLocal(event, ical.ComponentPropertyDtEnd, start.Add(EventDuration), tzid)
		event.SetSummary(s.DrugName)
		event.SetDescription(fmt.Sprintf("Take %s at %s (%s)", s.DrugName, s.Time, models.FormatWeekdays(s.Days)))
		event.AddRrule(RRule(s.Days))

		alarm := event.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger("PT0M")
		alarm.SetProperty(ical.ComponentPropertyDescription, "Don't forget your dose of "+s.DrugName)
	}
	return cal
}

// WriteICS serializes Calendar(schedules, now) to w.
func WriteICS(w io.Writer, schedules []models.Schedule, now time.Time) error {
	_, err := io.WriteString(w, Calendar(schedules, now).Serialize())
	return err
}

func setLocal(event *ical.VEvent, prop ical.ComponentProperty, t time.Time, tzid string) {
	if tzid == "" {
		event.SetProperty(prop, t.Format(localTimeFormat))
		return
	}
	event.SetProperty(prop, t.Format(localTimeFormat), &ical.KeyValues{
		Key:   string(ical.ParameterTzid),
		Value: []string{tzid},
	})
}

func tzidOf(loc *time.Location) string {
	name := loc.String()
	if name == "" || name == "Local" {
		return ""
	}
	return name
}
