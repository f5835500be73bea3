package schedules

import (
	"context"
	"time"

	"github.com/julianstephens/medweek/internal/calendar"
	"github.com/julianstephens/medweek/internal/constants"
	"github.com/julianstephens/medweek/internal/countdown"
	"github.com/julianstephens/medweek/internal/ledger"
	"github.com/julianstephens/medweek/internal/models"
)

// DayCell is one weekday of a schedule's row in the current week.
type DayCell struct {
	Weekday models.Weekday
	Date    string
	Active  bool
	Taken   bool
}

// Card is everything a view needs to render one schedule for the current
// week.
type Card struct {
	Schedule     models.Schedule
	Days         []DayCell
	Countdown    countdown.Countdown
	HasCountdown bool
	Summary      ledger.Summary
	Week         calendar.WeekWindow
}

// Refresh recomputes the countdown for now without touching storage. The
// day cells are kept as fetched; a new week needs a new Board.
func (c *Card) Refresh(now time.Time) {
	c.Countdown, c.HasCountdown = countdown.Until(c.Schedule, now)
}

// Stale reports whether now has left the week the card was built for.
func (c *Card) Stale(now time.Time) bool {
	return !c.Week.Contains(now)
}

// CountdownLabel is the countdown text, or "" for a dormant schedule.
func (c *Card) CountdownLabel() string {
	if !c.HasCountdown {
		return ""
	}
	return c.Countdown.Label()
}

// Board fetches the user's schedules and this week's adherence entries once
// and cross-checks them into cards.
func (s *Service) Board(ctx context.Context, userID string, now time.Time) ([]Card, error) {
	schedules, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.CurrentWeekEntries(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]map[string]bool)
	for _, e := range entries {
		if taken[e.ScheduleID] == nil {
			taken[e.ScheduleID] = make(map[string]bool)
		}
		taken[e.ScheduleID][e.Date] = true
	}

	week := calendar.CurrentWeek(now)
	cards := make([]Card, 0, len(schedules))
	for _, schedule := range schedules {
		card := Card{
			Schedule: schedule,
			Days:     make([]DayCell, 0, constants.DaysInWeek),
			Summary:  s.ledger.Summary(schedule, entries, now),
			Week:     week,
		}
		for i, wd := range models.Week {
			date := week.Day(i).Format(constants.DateFormat)
			card.Days = append(card.Days, DayCell{
				Weekday: wd,
				Date:    date,
				Active:  schedule.HasDay(wd),
				Taken:   taken[schedule.ID][date],
			})
		}
		card.Refresh(now)
		cards = append(cards, card)
	}
	return cards, nil
}
