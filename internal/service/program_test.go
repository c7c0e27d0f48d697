package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

func (f *fixture) program(t *testing.T, weeks int) *models.CycleProgram {
	t.Helper()
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	prog, err := f.planner.CreateProgram(f.ctx, &models.CycleProgram{
		Name:        "strength",
		Type:        models.ProgramRotating,
		StartDate:   &start,
		LengthWeeks: weeks,
	})
	require.NoError(t, err)
	return prog
}

func (f *fixture) inProgram(t *testing.T, prog *models.CycleProgram, title string, week int) *models.Item {
	t.Helper()
	in := &models.Item{Title: title, Context: models.ContextTraining, ProgramID: &prog.ID}
	if week > 0 {
		in.Kind, in.CycleWeek = models.ScheduleCycleWeek, week
	}
	item, err := f.planner.CreateItem(f.ctx, in)
	require.NoError(t, err)
	return item
}

func TestCreateProgramValidation(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 3))
	_, err := f.planner.CreateProgram(f.ctx, &models.CycleProgram{
		Name:        "short",
		Type:        models.ProgramRotating,
		LengthWeeks: 1,
	})
	assert.ErrorIs(t, err, schedule.ErrValidation)
}

func TestCycleWeekVisibility(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 8))
	prog := f.program(t, 3)
	f.inProgram(t, prog, "squat", 2)
	f.inProgram(t, prog, "bench", 1)
	f.inProgram(t, prog, "mobility", 0)

	v, err := f.planner.View(f.ctx, training)
	require.NoError(t, err)
	assert.Equal(t, 2, v.CycleWeeks[prog.ID])
	assert.Equal(t, []string{"squat", "mobility"}, f.titles(t, training))

	f.clock.now = day(2024, time.January, 22)
	assert.Equal(t, []string{"bench", "mobility"}, f.titles(t, training))

	f.clock.now = day(2024, time.January, 29)
	assert.Equal(t, []string{"squat", "mobility"}, f.titles(t, training))
}

func TestBuckets(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 8))
	prog := f.program(t, 3)
	a := f.inProgram(t, prog, "a", 2)
	b := f.inProgram(t, prog, "b", 2)
	c := f.inProgram(t, prog, "c", 3)
	d := f.inProgram(t, prog, "d", 0)

	require.NoError(t, f.planner.Reorder(f.ctx, models.BucketScope(prog.ID, 2), ids(b, a)))

	buckets, err := f.planner.Buckets(f.ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, buckets.CurrentWeek)
	assert.Equal(t, ids(d), ids(buckets.EveryWeek...))
	assert.Empty(t, buckets.Week(1))
	assert.Equal(t, ids(b, a), ids(buckets.Week(2)...))
	assert.Equal(t, ids(c), ids(buckets.Week(3)...))

	today, err := f.planner.ProgramToday(f.ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, ids(b, a, d), ids(today...))

	// Bucket views are authoring views, so week 3 is listed even in week 2.
	assert.Equal(t, []string{"c"}, f.titles(t, models.BucketScope(prog.ID, 3)))
}

func TestBucketReorderIgnoresSortMode(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 8))
	prog := f.program(t, 2)
	a := f.inProgram(t, prog, "a", 1)
	b := f.inProgram(t, prog, "b", 1)
	require.NoError(t, f.planner.SetSortMode(f.ctx, models.SortModeAuto))

	require.NoError(t, f.planner.Reorder(f.ctx, models.BucketScope(prog.ID, 1), ids(b, a)))
	assert.Equal(t, []string{"b", "a"}, f.titles(t, models.BucketScope(prog.ID, 1)))
}

func TestMoveToWeek(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 8))
	prog := f.program(t, 3)
	a := f.inProgram(t, prog, "a", 1)
	b := f.inProgram(t, prog, "b", 2)

	require.NoError(t, f.planner.MoveToWeek(f.ctx, a.ID, 2))
	buckets, err := f.planner.Buckets(f.ctx, prog.ID)
	require.NoError(t, err)
	assert.Empty(t, buckets.Week(1))
	assert.Equal(t, ids(a, b), ids(buckets.Week(2)...))

	require.NoError(t, f.planner.MoveToWeek(f.ctx, a.ID, 0))
	moved, err := f.planner.Item(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleEveryWeek, moved.Kind)

	assert.ErrorIs(t, f.planner.MoveToWeek(f.ctx, a.ID, 4), schedule.ErrValidation)

	loose := f.item(t, "loose", models.ContextTraining)
	assert.ErrorIs(t, f.planner.MoveToWeek(f.ctx, loose.ID, 1), schedule.ErrValidation)
}

func TestShortenedProgramKeepsItems(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 8))
	prog := f.program(t, 3)
	c := f.inProgram(t, prog, "c", 3)

	edit := *prog
	edit.LengthWeeks = 2
	_, err := f.planner.UpdateProgram(f.ctx, &edit)
	require.NoError(t, err)

	buckets, err := f.planner.Buckets(f.ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, ids(c), ids(buckets.Dormant...))
	assert.Len(t, buckets.Weeks, 2)
}
