package schedule

import (
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
)

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the first instant of the day after t.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// DaysBetween counts calendar days from from to to. It is negative when to
// precedes from and ignores DST shifts.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// CurrentWeek returns the 1-based week of a rotating program on today.
// The boolean is false when rotation is inactive, in which case every item
// behaves as an every-week item. Dates before the start clamp to week 1.
func CurrentWeek(p *models.CycleProgram, today time.Time) (int, bool) {
	if !p.IsRotating() {
		return 0, false
	}
	days := DaysBetween(*p.StartDate, today)
	if days < 0 {
		days = 0
	}
	return (days/7)%p.LengthWeeks + 1, true
}

// WeekLockExpiry returns when a week lock made at now stops: the start of
// the day after the last chosen weekday within the seven days beginning
// today.
func WeekLockExpiry(now time.Time, weekdays []int) (time.Time, error) {
	set, err := weekdaySet(weekdays)
	if err != nil {
		return time.Time{}, err
	}
	if len(set) == 0 {
		return time.Time{}, Invalidf("week lock needs at least one weekday")
	}

	today := StartOfDay(now)
	last := 0
	for i := 0; i < 7; i++ {
		if set[int(today.AddDate(0, 0, i).Weekday())] {
			last = i
		}
	}
	return today.AddDate(0, 0, last+1), nil
}

func weekdaySet(weekdays []int) (map[int]bool, error) {
	set := make(map[int]bool, len(weekdays))
	for _, d := range weekdays {
		if d < 0 || d > 6 {
			return nil, Invalidf("weekday %d out of range 0..6", d)
		}
		set[d] = true
	}
	return set, nil
}
