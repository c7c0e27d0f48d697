package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dayplan/internal/models"
)

func TestDayLock(t *testing.T) {
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.Local)
	l := NewDayLock(7, now)

	assert.Equal(t, models.LockDay, l.Kind)
	assert.True(t, LockActive(l, now))
	assert.True(t, LockActive(l, time.Date(2024, 1, 3, 23, 59, 59, 0, time.Local)))
	assert.False(t, LockActive(l, date(2024, 1, 4)))

	st := Status(l, now)
	assert.Equal(t, LockedDay, st.State)
	assert.True(t, st.Active)
	assert.Equal(t, Unlocked, Status(l, date(2024, 1, 4)).State)
}

func TestWeekLockDormantOnWeekend(t *testing.T) {
	saturday := time.Date(2024, 1, 6, 12, 0, 0, 0, time.Local)
	l, err := NewWeekLock(7, saturday, []int{5, 1, 2, 3, 4, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, l.Weekdays)

	assert.False(t, LockActive(l, saturday))
	assert.False(t, LockActive(l, saturday.AddDate(0, 0, 1)))
	assert.True(t, LockActive(l, saturday.AddDate(0, 0, 2)))
	assert.True(t, LockActive(l, saturday.AddDate(0, 0, 6)))
	assert.False(t, LockActive(l, saturday.AddDate(0, 0, 7)))

	st := Status(l, saturday)
	assert.Equal(t, LockedWeek, st.State)
	assert.True(t, st.Dormant)
	assert.False(t, st.Active)
}

func TestWeekLockNeedsWeekdays(t *testing.T) {
	_, err := NewWeekLock(7, time.Now(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNilLock(t *testing.T) {
	assert.False(t, LockActive(nil, time.Now()))
	assert.Equal(t, Unlocked, Status(nil, time.Now()).State)
}
