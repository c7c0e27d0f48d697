package schedule

import (
	"slices"
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
)

// Visibility is the outcome of filtering one item for one day
type Visibility string

const (
	Visible                Visibility = "visible"
	HiddenManualSkip       Visibility = "skipped"
	HiddenScheduleExcluded Visibility = "excluded"
)

// DaySchedule answers whether an item is switched off on a given day.
type DaySchedule interface {
	Excluded(item *models.Item, day time.Time) bool
}

// ItemSchedule reads the item's own weekday set or specific dates.
type ItemSchedule struct{}

func (ItemSchedule) Excluded(item *models.Item, day time.Time) bool {
	switch item.Kind {
	case models.ScheduleWeekdays:
		return !slices.Contains(item.Weekdays, int(day.Weekday()))
	case models.ScheduleSpecificDates:
		return !slices.Contains(item.Dates, day.Format(models.DateLayout))
	}
	return false
}

// WeekdayExclusions is a stored exclusion table keyed by item id.
type WeekdayExclusions map[string][]int

func (w WeekdayExclusions) Excluded(item *models.Item, day time.Time) bool {
	return slices.Contains(w[item.ID], int(day.Weekday()))
}

// Schedules excludes an item when any member does.
type Schedules []DaySchedule

func (s Schedules) Excluded(item *models.Item, day time.Time) bool {
	for _, ds := range s {
		if ds != nil && ds.Excluded(item, day) {
			return true
		}
	}
	return false
}

// Filter decides visibility of items for a single day. Weeks maps program
// ids to their current cycle week; programs missing from it are not
// rotating.
type Filter struct {
	Today    time.Time
	Skipped  map[string]bool
	Schedule DaySchedule
	Weeks    map[string]int
}

// Evaluate applies the rules in order: manual skip, day schedule, cycle week.
func (f *Filter) Evaluate(item *models.Item) Visibility {
	if f.Skipped[item.ID] {
		return HiddenManualSkip
	}
	if f.Schedule != nil && f.Schedule.Excluded(item, f.Today) {
		return HiddenScheduleExcluded
	}
	if item.IsCycleTagged() && item.ProgramID != nil {
		if week, ok := f.Weeks[*item.ProgramID]; ok && week != item.CycleWeek {
			return HiddenScheduleExcluded
		}
	}
	return Visible
}

// Hidden pairs an item with the reason it is not shown today
type Hidden struct {
	Item   *models.Item `json:"item"`
	Reason Visibility   `json:"reason"`
}

// Split separates items into visible and hidden, keeping input order.
func (f *Filter) Split(items []*models.Item) ([]*models.Item, []Hidden) {
	var visible []*models.Item
	var hidden []Hidden
	for _, item := range items {
		if v := f.Evaluate(item); v == Visible {
			visible = append(visible, item)
		} else {
			hidden = append(hidden, Hidden{Item: item, Reason: v})
		}
	}
	return visible, hidden
}
