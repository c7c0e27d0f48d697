package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kerhoff/dayplan/internal/models"
)

func strp(s string) *string { return &s }

func TestFilterEvaluate(t *testing.T) {
	tuesday := date(2024, 1, 2)

	weekdays := &models.Item{ID: "a", Kind: models.ScheduleWeekdays, Weekdays: []int{1, 3, 5}}
	everyWeek := &models.Item{ID: "b", Kind: models.ScheduleEveryWeek}
	dated := &models.Item{ID: "c", Kind: models.ScheduleSpecificDates, Dates: []string{"2024-01-02"}}
	otherDate := &models.Item{ID: "d", Kind: models.ScheduleSpecificDates, Dates: []string{"2024-01-03"}}
	week2 := &models.Item{ID: "e", ProgramID: strp("p1"), Kind: models.ScheduleCycleWeek, CycleWeek: 2}
	week1 := &models.Item{ID: "f", ProgramID: strp("p1"), Kind: models.ScheduleCycleWeek, CycleWeek: 1}
	untracked := &models.Item{ID: "g", ProgramID: strp("p2"), Kind: models.ScheduleCycleWeek, CycleWeek: 3}

	f := &Filter{
		Today:    tuesday,
		Skipped:  map[string]bool{},
		Schedule: Schedules{ItemSchedule{}, WeekdayExclusions{"b": {0, 6}}},
		Weeks:    map[string]int{"p1": 1},
	}

	tests := []struct {
		name string
		item *models.Item
		want Visibility
	}{
		{"weekday set excludes tuesday", weekdays, HiddenScheduleExcluded},
		{"every week is visible", everyWeek, Visible},
		{"matching date", dated, Visible},
		{"other date", otherDate, HiddenScheduleExcluded},
		{"other cycle week", week2, HiddenScheduleExcluded},
		{"current cycle week", week1, Visible},
		{"inactive rotation behaves as every week", untracked, Visible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Evaluate(tt.item))
		})
	}
}

func TestFilterManualSkipWins(t *testing.T) {
	item := &models.Item{ID: "b", Kind: models.ScheduleWeekdays, Weekdays: []int{1}}
	f := &Filter{
		Today:    date(2024, 1, 2),
		Skipped:  map[string]bool{"b": true},
		Schedule: ItemSchedule{},
	}
	assert.Equal(t, HiddenManualSkip, f.Evaluate(item))

	delete(f.Skipped, "b")
	assert.Equal(t, HiddenScheduleExcluded, f.Evaluate(item))
}

func TestWeekdayExclusionsUseWeekday(t *testing.T) {
	item := &models.Item{ID: "x"}
	ex := WeekdayExclusions{"x": {int(time.Sunday)}}
	assert.True(t, ex.Excluded(item, date(2024, 1, 7)))
	assert.False(t, ex.Excluded(item, date(2024, 1, 8)))
	assert.False(t, ex.Excluded(&models.Item{ID: "y"}, date(2024, 1, 7)))
}

func TestFilterSplit(t *testing.T) {
	items := []*models.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	f := &Filter{Today: date(2024, 1, 2), Skipped: map[string]bool{"b": true}}

	visible, hidden := f.Split(items)
	assert.Equal(t, []string{"a", "c"}, IDs(visible))
	if assert.Len(t, hidden, 1) {
		assert.Equal(t, "b", hidden[0].Item.ID)
		assert.Equal(t, HiddenManualSkip, hidden[0].Reason)
	}
}
