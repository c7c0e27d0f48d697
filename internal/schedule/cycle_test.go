package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dayplan/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func rotating(start time.Time, weeks int) *models.CycleProgram {
	return &models.CycleProgram{ID: "p1", Type: models.ProgramRotating, StartDate: &start, LengthWeeks: weeks}
}

func TestCurrentWeek(t *testing.T) {
	p := rotating(date(2024, 1, 1), 3)

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"start date", date(2024, 1, 1), 1},
		{"end of first week", date(2024, 1, 7), 1},
		{"second week", date(2024, 1, 8), 2},
		{"third week", date(2024, 1, 15), 3},
		{"wraps to first week", date(2024, 1, 22), 1},
		{"second week again", date(2024, 1, 29), 2},
		{"before start clamps", date(2023, 12, 1), 1},
		{"late in the day", time.Date(2024, 1, 8, 23, 59, 0, 0, time.Local), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CurrentWeek(p, tt.today)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrentWeekAlwaysInRange(t *testing.T) {
	start := date(2024, 3, 10)
	for n := 2; n <= 8; n++ {
		p := rotating(start, n)
		for d := -10; d < 400; d++ {
			got, ok := CurrentWeek(p, start.AddDate(0, 0, d))
			require.True(t, ok)
			require.GreaterOrEqual(t, got, 1)
			require.LessOrEqual(t, got, n)
		}
	}
}

func TestCurrentWeekInactive(t *testing.T) {
	start := date(2024, 1, 1)

	_, ok := CurrentWeek(nil, start)
	assert.False(t, ok)

	_, ok = CurrentWeek(&models.CycleProgram{Type: models.ProgramWeekly, StartDate: &start, LengthWeeks: 3}, start)
	assert.False(t, ok)

	_, ok = CurrentWeek(&models.CycleProgram{Type: models.ProgramRotating, LengthWeeks: 3}, start)
	assert.False(t, ok)
}

func TestWeekLockExpiry(t *testing.T) {
	saturday := time.Date(2024, 1, 6, 15, 0, 0, 0, time.Local)

	got, err := WeekLockExpiry(saturday, []int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 13), got)

	monday := time.Date(2024, 1, 8, 9, 0, 0, 0, time.Local)
	got, err = WeekLockExpiry(monday, []int{1})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 9), got)

	_, err = WeekLockExpiry(monday, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = WeekLockExpiry(monday, []int{7})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEndOfDay(t *testing.T) {
	now := time.Date(2024, 1, 6, 15, 30, 0, 0, time.Local)
	assert.Equal(t, date(2024, 1, 7), EndOfDay(now))
	assert.Equal(t, -5, DaysBetween(date(2024, 1, 6), date(2024, 1, 1)))
}
