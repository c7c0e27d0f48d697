package schedule

import (
	"strings"
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
)

// ValidateItem checks an item's schedule invariants.
func ValidateItem(item *models.Item) error {
	if strings.TrimSpace(item.Title) == "" {
		return Invalidf("title is required")
	}
	if !item.Context.Valid() {
		return Invalidf("unknown grouping context %q", item.Context)
	}

	switch item.Kind {
	case models.ScheduleEveryWeek, "":
		if len(item.Weekdays) > 0 || len(item.Dates) > 0 || item.CycleWeek != 0 {
			return Invalidf("every-week items take no weekdays, dates or cycle week")
		}
	case models.ScheduleWeekdays:
		if len(item.Dates) > 0 || item.CycleWeek != 0 {
			return Invalidf("weekday items take only weekdays")
		}
		if len(item.Weekdays) == 0 {
			return Invalidf("weekday schedule needs at least one weekday")
		}
		if _, err := weekdaySet(item.Weekdays); err != nil {
			return err
		}
	case models.ScheduleSpecificDates:
		if len(item.Weekdays) > 0 || item.CycleWeek != 0 {
			return Invalidf("date items take only dates")
		}
		if len(item.Dates) == 0 {
			return Invalidf("date schedule needs at least one date")
		}
		for _, d := range item.Dates {
			if _, err := time.Parse(models.DateLayout, d); err != nil {
				return Invalidf("date %q is not YYYY-MM-DD", d)
			}
		}
	case models.ScheduleCycleWeek:
		if len(item.Weekdays) > 0 || len(item.Dates) > 0 {
			return Invalidf("cycle-week items take only a week number")
		}
		if item.CycleWeek < 1 {
			return Invalidf("cycle week must be at least 1")
		}
		if item.ProgramID == nil {
			return Invalidf("cycle-week items must belong to a program")
		}
	default:
		return Invalidf("unknown schedule kind %q", item.Kind)
	}

	return ValidateTiming(item.StartTime, item.ReminderMinutes)
}

// ValidateTiming checks a start time and reminder lead.
func ValidateTiming(start *string, reminder *int) error {
	if start != nil {
		if _, err := time.Parse(models.TimeLayout, *start); err != nil {
			return Invalidf("start time %q is not HH:MM", *start)
		}
	}
	if reminder != nil && *reminder < 0 {
		return Invalidf("reminder minutes must not be negative")
	}
	return nil
}

// ValidateProgram checks a cycle program's settings.
func ValidateProgram(p *models.CycleProgram) error {
	if strings.TrimSpace(p.Name) == "" {
		return Invalidf("program name is required")
	}
	switch p.Type {
	case models.ProgramWeekly:
	case models.ProgramRotating:
		if p.LengthWeeks < 2 {
			return Invalidf("rotating programs need at least 2 weeks")
		}
	default:
		return Invalidf("unknown program type %q", p.Type)
	}
	return nil
}

// ValidateWeekdays checks that every weekday is in 0..6 (Sunday first).
func ValidateWeekdays(weekdays []int) error {
	_, err := weekdaySet(weekdays)
	return err
}
