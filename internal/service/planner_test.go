package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

var training = models.ContextScope(models.ContextTraining)

func TestViewNaturalOrder(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	f.item(t, "a", models.ContextTraining)
	f.item(t, "b", models.ContextTraining)
	f.item(t, "x", models.ContextTracking)
	f.item(t, "c", models.ContextTraining)

	assert.Equal(t, []string{"a", "b", "c"}, f.titles(t, training))
	assert.Equal(t, []string{"a", "b", "x", "c"}, f.titles(t, models.ScopeTimeline))
}

func TestReorderManual(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)
	c := f.item(t, "c", models.ContextTraining)

	require.NoError(t, f.planner.Reorder(f.ctx, training, ids(c, a, b)))

	assert.Equal(t, []string{"c", "a", "b"}, f.titles(t, training))
	assert.Equal(t, ids(c, a, b), f.storedOrder(t, training))

	f.item(t, "d", models.ContextTraining)
	assert.Equal(t, []string{"c", "a", "b", "d"}, f.titles(t, training))
	require.NoError(t, f.planner.DeleteItem(f.ctx, a.ID))
	assert.Equal(t, []string{"c", "b", "d"}, f.titles(t, training))
}

func TestReorderValidation(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)

	tests := []struct {
		name  string
		scope models.Scope
		ids   []string
	}{
		{"missing id", training, ids(a)},
		{"duplicate id", training, []string{a.ID, a.ID}},
		{"unknown id", training, []string{a.ID, "ghost"}},
		{"unknown scope", models.Scope("garden"), ids(a, b)},
		{"timeline in manual mode", models.ScopeTimeline, ids(a, b)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.planner.Reorder(f.ctx, tt.scope, tt.ids)
			assert.ErrorIs(t, err, schedule.ErrValidation)
		})
	}
	assert.Nil(t, f.storedOrder(t, training))
}

func TestReorderRefusedInAutoMode(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)
	require.NoError(t, f.planner.SetSortMode(f.ctx, models.SortModeAuto))

	err := f.planner.Reorder(f.ctx, training, ids(b, a))
	assert.ErrorIs(t, err, schedule.ErrValidation)
}

func TestReorderRollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)
	require.NoError(t, f.planner.Reorder(f.ctx, training, ids(b, a)))

	f.orders.fail = true
	err := f.planner.Reorder(f.ctx, training, ids(a, b))
	require.ErrorIs(t, err, schedule.ErrPersistence)
	assert.ErrorIs(t, err, errStoreDown)

	assert.Equal(t, ids(b, a), f.planner.st.orders[training])
	assert.Equal(t, []string{"b", "a"}, f.titles(t, training))
}

func TestReorderKeepsHiddenSlots(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)
	c := f.item(t, "c", models.ContextTraining)
	require.NoError(t, f.planner.Skip(f.ctx, b.ID))

	require.NoError(t, f.planner.Reorder(f.ctx, training, ids(c, a)))
	assert.Equal(t, ids(c, b, a), f.storedOrder(t, training))
}

func TestLockedReorderLeavesStoredOrder(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)
	c := f.item(t, "c", models.ContextTraining)
	require.NoError(t, f.planner.Reorder(f.ctx, training, ids(b, c, a)))

	status, err := f.planner.Lock(f.ctx, models.LockDay, nil)
	require.NoError(t, err)
	assert.Equal(t, schedule.LockedDay, status.State)
	assert.True(t, status.Active)

	before := f.storedOrder(t, training)
	err = f.planner.Reorder(f.ctx, training, ids(a, b, c))
	require.ErrorIs(t, err, schedule.ErrLocked)
	assert.Equal(t, before, f.storedOrder(t, training))

	// Visibility and skipping keep working while locked.
	require.NoError(t, f.planner.Skip(f.ctx, a.ID))
	assert.Equal(t, []string{"b", "c"}, f.titles(t, training))

	// The lock runs out at midnight.
	f.clock.now = day(2024, time.January, 4)
	require.NoError(t, f.planner.Reorder(f.ctx, training, ids(a, b, c)))
}

func TestLockRequiresUnlockFirst(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))

	_, err := f.planner.Lock(f.ctx, models.LockWeek, nil)
	assert.ErrorIs(t, err, schedule.ErrValidation)

	_, err = f.planner.Lock(f.ctx, models.LockDay, nil)
	require.NoError(t, err)
	_, err = f.planner.Lock(f.ctx, models.LockDay, nil)
	assert.ErrorIs(t, err, schedule.ErrValidation)

	require.NoError(t, f.planner.Unlock(f.ctx))
	require.NoError(t, f.planner.Unlock(f.ctx))
	status, err := f.planner.LockStatus(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, schedule.Unlocked, status.State)
}

func TestWeekLockDormantOnSaturday(t *testing.T) {
	saturday := day(2024, time.January, 6)
	f := newFixture(t, saturday)
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)

	status, err := f.planner.Lock(f.ctx, models.LockWeek, []int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, schedule.LockedWeek, status.State)
	assert.True(t, status.Dormant)
	assert.False(t, status.Active)

	require.NoError(t, f.planner.Reorder(f.ctx, training, ids(b, a)))

	f.clock.now = day(2024, time.January, 8)
	status, err = f.planner.LockStatus(f.ctx)
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.ErrorIs(t, f.planner.Reorder(f.ctx, training, ids(a, b)), schedule.ErrLocked)

	f.clock.now = day(2024, time.January, 13)
	require.NoError(t, f.planner.Reorder(f.ctx, training, ids(a, b)))
}

func TestSkipThenRestore(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	f.item(t, "b", models.ContextTraining)

	require.NoError(t, f.planner.Skip(f.ctx, a.ID))
	require.NoError(t, f.planner.Skip(f.ctx, a.ID))

	v, err := f.planner.View(f.ctx, training)
	require.NoError(t, err)
	require.Len(t, v.Hidden, 1)
	assert.Equal(t, schedule.HiddenManualSkip, v.Hidden[0].Reason)

	require.NoError(t, f.planner.Restore(f.ctx, a.ID))
	assert.Equal(t, []string{"a", "b"}, f.titles(t, training))

	records, err := f.store.Skips.ListByDate(f.ctx, f.planner.UserID(), "2024-01-03")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSkipIsScopedToToday(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	require.NoError(t, f.planner.Skip(f.ctx, a.ID))
	assert.Empty(t, f.titles(t, training))

	f.clock.now = day(2024, time.January, 4)
	assert.Equal(t, []string{"a"}, f.titles(t, training))
}

func TestSkipRollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)

	f.skips.fail = true
	err := f.planner.Skip(f.ctx, a.ID)
	require.ErrorIs(t, err, schedule.ErrPersistence)
	assert.False(t, f.planner.st.skipped[a.ID])

	f.skips.fail = false
	require.NoError(t, f.planner.Skip(f.ctx, a.ID))
	f.skips.fail = true
	require.ErrorIs(t, f.planner.Restore(f.ctx, a.ID), schedule.ErrPersistence)
	assert.True(t, f.planner.st.skipped[a.ID])
}

func TestSkipUnknownItem(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	assert.ErrorIs(t, f.planner.Skip(f.ctx, "ghost"), repository.ErrNotFound)
}

func TestAutoModeIsCompletedLast(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)
	c := f.item(t, "c", models.ContextTraining)
	require.NoError(t, f.planner.Reorder(f.ctx, training, ids(c, b, a)))
	require.NoError(t, f.planner.SetSortMode(f.ctx, models.SortModeAuto))

	require.NoError(t, f.planner.SetCompleted(f.ctx, a.ID, true))
	first := f.titles(t, training)
	assert.Equal(t, []string{"b", "c", "a"}, first)
	assert.Equal(t, first, f.titles(t, training))

	// The manual order is still there when switching back.
	require.NoError(t, f.planner.SetSortMode(f.ctx, models.SortModeManual))
	assert.Equal(t, []string{"c", "b", "a"}, f.titles(t, training))
}

func TestTimelineRepartitionsOnCompletion(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	f.item(t, "b", models.ContextCheckIn)
	f.item(t, "c", models.ContextTracking)
	require.NoError(t, f.planner.SetSortMode(f.ctx, models.SortModeTimeline))

	require.NoError(t, f.planner.SetCompleted(f.ctx, a.ID, true))
	assert.Equal(t, []string{"b", "c", "a"}, f.titles(t, models.ScopeTimeline))

	// Reopening does not move it back.
	require.NoError(t, f.planner.SetCompleted(f.ctx, a.ID, false))
	assert.Equal(t, []string{"b", "c", "a"}, f.titles(t, models.ScopeTimeline))
}

func TestTimelineCompletionWhileLocked(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	f.item(t, "b", models.ContextTraining)
	require.NoError(t, f.planner.SetSortMode(f.ctx, models.SortModeTimeline))
	_, err := f.planner.Lock(f.ctx, models.LockDay, nil)
	require.NoError(t, err)

	require.NoError(t, f.planner.SetCompleted(f.ctx, a.ID, true))
	assert.Nil(t, f.storedOrder(t, models.ScopeTimeline))
	assert.Equal(t, []string{"a", "b"}, f.titles(t, models.ScopeTimeline))
}

func TestCompletionRollsBackWhenOrderWriteFails(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	f.item(t, "b", models.ContextTraining)
	require.NoError(t, f.planner.SetSortMode(f.ctx, models.SortModeTimeline))

	f.orders.fail = true
	err := f.planner.SetCompleted(f.ctx, a.ID, true)
	require.ErrorIs(t, err, schedule.ErrPersistence)

	stored, err := f.store.Items.GetByID(f.ctx, f.planner.UserID(), a.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed)
	assert.False(t, f.planner.st.items[0].Completed)
}

func TestScheduleExclusions(t *testing.T) {
	tuesday := day(2024, time.January, 2)
	f := newFixture(t, tuesday)

	_, err := f.planner.CreateItem(f.ctx, &models.Item{
		Title:    "swim",
		Context:  models.ContextTraining,
		Kind:     models.ScheduleWeekdays,
		Weekdays: []int{1, 3, 5},
	})
	require.NoError(t, err)
	run := f.item(t, "run", models.ContextTraining)
	require.NoError(t, f.planner.SetDayExclusion(f.ctx, run.ID, []int{2}))

	v, err := f.planner.View(f.ctx, training)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	require.Len(t, v.Hidden, 2)
	for _, h := range v.Hidden {
		assert.Equal(t, schedule.HiddenScheduleExcluded, h.Reason)
	}

	require.NoError(t, f.planner.SetDayExclusion(f.ctx, run.ID, nil))
	assert.Equal(t, []string{"run"}, f.titles(t, training))

	assert.ErrorIs(t, f.planner.SetDayExclusion(f.ctx, run.ID, []int{7}), schedule.ErrValidation)
}

func TestCreateItemValidation(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))

	_, err := f.planner.CreateItem(f.ctx, &models.Item{Title: " ", Context: models.ContextTraining})
	assert.ErrorIs(t, err, schedule.ErrValidation)

	_, err = f.planner.CreateItem(f.ctx, &models.Item{
		Title:     "legs",
		Context:   models.ContextTraining,
		Kind:      models.ScheduleCycleWeek,
		CycleWeek: 1,
		ProgramID: strp("missing"),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	item, err := f.planner.CreateItem(f.ctx, &models.Item{Title: "stretch", Context: models.ContextCustom})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleEveryWeek, item.Kind)
	assert.NotEmpty(t, item.ID)
}

func TestUpdateItemKeepsCompletion(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	require.NoError(t, f.planner.SetCompleted(f.ctx, a.ID, true))

	edit := a.Clone()
	edit.Title = "renamed"
	edit.StartTime = strp("07:30")
	edit.Completed = false
	updated, err := f.planner.UpdateItem(f.ctx, edit)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "07:30", *updated.StartTime)

	edit.StartTime = strp("7h")
	_, err = f.planner.UpdateItem(f.ctx, edit)
	assert.ErrorIs(t, err, schedule.ErrValidation)
}

func TestRefreshPicksUpOtherWriters(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	a := f.item(t, "a", models.ContextTraining)
	b := f.item(t, "b", models.ContextTraining)

	require.NoError(t, f.store.Orders.Save(f.ctx, &models.OrderRecord{
		UserID:     f.planner.UserID(),
		Scope:      training,
		OrderedIDs: ids(b, a),
	}))
	assert.Equal(t, []string{"b", "a"}, f.titles(t, training))
}
