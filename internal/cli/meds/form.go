package meds

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/medweek/internal/models"
)

// ScheduleFormModel holds the values bound to the schedule form.
type ScheduleFormModel struct {
	Drug string
	Time string
	Days []models.Weekday
}

// NewScheduleForm builds the add/edit form. The drug field is only shown
// when adding.
func NewScheduleForm(fm *ScheduleFormModel, withDrug bool) *huh.Form {
	options := make([]huh.Option[models.Weekday], 0, len(models.Week))
	for _, wd := range models.Week {
		options = append(options, huh.NewOption(string(wd), wd).Selected(slices.Contains(fm.Days, wd)))
	}

	var fields []huh.Field
	if withDrug {
		fields = append(fields, huh.NewInput().
			Title("Drug").
			Value(&fm.Drug).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("drug name cannot be empty")
				}
				return nil
			}))
	}
	fields = append(fields,
		huh.NewInput().
			Title("Time (HH:MM)").
			Value(&fm.Time).
			Validate(func(s string) error {
				if _, err := models.ParseTimeOfDay(s); err != nil {
					return fmt.Errorf("invalid time format, use HH:MM")
				}
				return nil
			}),
		huh.NewMultiSelect[models.Weekday]().
			Title("Days").
			Options(options...).
			Value(&fm.Days).
			Validate(func(days []models.Weekday) error {
				if withDrug && len(days) == 0 {
					return fmt.Errorf("pick at least one day")
				}
				return nil
			}),
	)

	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeDracula())
}
