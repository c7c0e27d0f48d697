package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kerhoff/dayplan/internal/models"
)

func TestValidateItem(t *testing.T) {
	neg := -5
	tests := []struct {
		name string
		item models.Item
		ok   bool
	}{
		{"every week", models.Item{Title: "Stretch", Context: models.ContextTraining, Kind: models.ScheduleEveryWeek}, true},
		{"missing title", models.Item{Context: models.ContextTraining}, false},
		{"bad context", models.Item{Title: "x", Context: "gym"}, false},
		{"weekdays", models.Item{Title: "x", Context: models.ContextCustom, Kind: models.ScheduleWeekdays, Weekdays: []int{1, 3}}, true},
		{"weekday out of range", models.Item{Title: "x", Context: models.ContextCustom, Kind: models.ScheduleWeekdays, Weekdays: []int{9}}, false},
		{"weekdays and dates", models.Item{Title: "x", Context: models.ContextCustom, Kind: models.ScheduleWeekdays, Weekdays: []int{1}, Dates: []string{"2024-01-01"}}, false},
		{"bad date", models.Item{Title: "x", Context: models.ContextCustom, Kind: models.ScheduleSpecificDates, Dates: []string{"01/02/2024"}}, false},
		{"cycle week without program", models.Item{Title: "x", Context: models.ContextTraining, Kind: models.ScheduleCycleWeek, CycleWeek: 2}, false},
		{"cycle week", models.Item{Title: "x", Context: models.ContextTraining, Kind: models.ScheduleCycleWeek, CycleWeek: 2, ProgramID: strp("p")}, true},
		{"bad start time", models.Item{Title: "x", Context: models.ContextTracking, StartTime: strp("25:00")}, false},
		{"negative reminder", models.Item{Title: "x", Context: models.ContextTracking, ReminderMinutes: &neg}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(&tt.item)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestValidateProgram(t *testing.T) {
	assert.NoError(t, ValidateProgram(&models.CycleProgram{Name: "Base", Type: models.ProgramRotating, LengthWeeks: 2}))
	assert.ErrorIs(t, ValidateProgram(&models.CycleProgram{Name: "Base", Type: models.ProgramRotating, LengthWeeks: 1}), ErrValidation)
	assert.ErrorIs(t, ValidateProgram(&models.CycleProgram{Type: models.ProgramWeekly}), ErrValidation)
	assert.NoError(t, ValidateProgram(&models.CycleProgram{Name: "Base", Type: models.ProgramWeekly}))
}
