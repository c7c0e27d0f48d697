package models

import "time"

// DateLayout is the calendar date format used for skip records and
// specific-date schedules.
const DateLayout = "2006-01-02"

// TimeLayout is the wall clock format of an item's start time.
const TimeLayout = "15:04"

// GroupingContext partitions items for per-context ordering
type GroupingContext string

const (
	ContextCheckIn  GroupingContext = "check-in"
	ContextTraining GroupingContext = "training"
	ContextTracking GroupingContext = "tracking"
	ContextCustom   GroupingContext = "custom"
)

// GroupingContexts lists every grouping context in display order
var GroupingContexts = []GroupingContext{ContextCheckIn, ContextTraining, ContextTracking, ContextCustom}

// Valid reports whether c is a known grouping context
func (c GroupingContext) Valid() bool {
	switch c {
	case ContextCheckIn, ContextTraining, ContextTracking, ContextCustom:
		return true
	}
	return false
}

// ScheduleKind describes on which days an item occurs
type ScheduleKind string

const (
	ScheduleEveryWeek     ScheduleKind = "every_week"
	ScheduleWeekdays      ScheduleKind = "weekdays"
	ScheduleSpecificDates ScheduleKind = "dates"
	ScheduleCycleWeek     ScheduleKind = "cycle_week"
)

// Item is a displayable unit: a system task or a user-authored activity.
// At most one of Weekdays, Dates and CycleWeek is set, matching Kind.
type Item struct {
	ID              string          `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	ProgramID       *string         `json:"program_id,omitempty" db:"program_id"`
	Title           string          `json:"title" db:"title"`
	Context         GroupingContext `json:"context" db:"context"`
	Kind            ScheduleKind    `json:"schedule_kind" db:"schedule_kind"`
	Weekdays        []int           `json:"weekdays,omitempty" db:"weekdays"`
	Dates           []string        `json:"dates,omitempty" db:"dates"`
	CycleWeek       int             `json:"cycle_week,omitempty" db:"cycle_week"`
	Completed       bool            `json:"completed" db:"completed"`
	StartTime       *string         `json:"start_time" db:"start_time"`
	ReminderMinutes *int            `json:"reminder_minutes" db:"reminder_minutes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// IsCycleTagged returns true if the item belongs to a specific program week
func (i *Item) IsCycleTagged() bool {
	return i.Kind == ScheduleCycleWeek && i.CycleWeek > 0
}

// HasReminder returns true if the item carries both a start time and a lead time
func (i *Item) HasReminder() bool {
	return i.StartTime != nil && i.ReminderMinutes != nil
}

// Timing returns the item's start time and reminder settings
func (i *Item) Timing() Timing {
	return Timing{ItemID: i.ID, StartTime: i.StartTime, ReminderMinutes: i.ReminderMinutes}
}

// Clone returns a deep copy so that staged edits never alias live state
func (i *Item) Clone() *Item {
	c := *i
	c.Weekdays = append([]int(nil), i.Weekdays...)
	c.Dates = append([]string(nil), i.Dates...)
	if i.ProgramID != nil {
		p := *i.ProgramID
		c.ProgramID = &p
	}
	if i.StartTime != nil {
		s := *i.StartTime
		c.StartTime = &s
	}
	if i.ReminderMinutes != nil {
		m := *i.ReminderMinutes
		c.ReminderMinutes = &m
	}
	return &c
}

// Timing is the per-item time and reminder state written by template apply
type Timing struct {
	ItemID          string  `json:"item_id" db:"item_id"`
	StartTime       *string `json:"start_time" db:"start_time"`
	ReminderMinutes *int    `json:"reminder_minutes" db:"reminder_minutes"`
}
