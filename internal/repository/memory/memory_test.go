package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
)

func strp(s string) *string { return &s }

func TestItemsListInCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := New()

	for _, id := range []string{"c", "a", "b"} {
		_, err := store.Items.Create(ctx, &models.Item{ID: id, UserID: 1, Title: id})
		require.NoError(t, err)
	}
	_, err := store.Items.Create(ctx, &models.Item{ID: "other", UserID: 2, Title: "other"})
	require.NoError(t, err)

	items, err := store.Items.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, "b", items[2].ID)
}

func TestSetTimingsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, err := store.Items.Create(ctx, &models.Item{ID: "x", UserID: 1, StartTime: strp("07:00")})
	require.NoError(t, err)

	err = store.Items.SetTimings(ctx, 1, []models.Timing{
		{ItemID: "x", StartTime: strp("08:00")},
		{ItemID: "missing", StartTime: strp("09:00")},
	})
	require.ErrorIs(t, err, repository.ErrNotFound)

	x, err := store.Items.GetByID(ctx, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, "07:00", *x.StartTime)
}

func TestSkipUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := New()
	rec := &models.SkipRecord{UserID: 1, ItemID: "x", Date: "2024-01-03"}

	require.NoError(t, store.Skips.Upsert(ctx, rec))
	require.NoError(t, store.Skips.Upsert(ctx, rec))
	records, err := store.Skips.ListByDate(ctx, 1, "2024-01-03")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = store.Skips.ListByDate(ctx, 1, "2024-01-04")
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.Skips.Delete(ctx, 1, "x", "2024-01-03"))
	records, err = store.Skips.ListByDate(ctx, 1, "2024-01-03")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTemplateDefaultSwap(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Templates.Create(ctx, &models.ScheduleTemplate{ID: "t1", UserID: 1, Name: "b", IsDefault: true}))
	require.NoError(t, store.Templates.Create(ctx, &models.ScheduleTemplate{ID: "t2", UserID: 1, Name: "a", IsDefault: true}))

	defaults := func() []string {
		templates, err := store.Templates.List(ctx, 1)
		require.NoError(t, err)
		var out []string
		for _, tmpl := range templates {
			if tmpl.IsDefault {
				out = append(out, tmpl.ID)
			}
		}
		return out
	}
	assert.Equal(t, []string{"t2"}, defaults())

	require.NoError(t, store.Templates.SetDefault(ctx, 1, "t1"))
	assert.Equal(t, []string{"t1"}, defaults())

	assert.ErrorIs(t, store.Templates.SetDefault(ctx, 1, "nope"), repository.ErrNotFound)
	assert.Equal(t, []string{"t1"}, defaults())

	require.NoError(t, store.Templates.SetDefault(ctx, 1, ""))
	assert.Empty(t, defaults())
}

func TestDayScheduleEmptyClears(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Days.Save(ctx, &models.DayExclusion{UserID: 1, ItemID: "x", Weekdays: []int{0, 6}}))

	days, err := store.Days.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, []int{0, 6}, days[0].Weekdays)

	require.NoError(t, store.Days.Save(ctx, &models.DayExclusion{UserID: 1, ItemID: "x"}))
	days, err = store.Days.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestLockGetReturnsNilWhenAbsent(t *testing.T) {
	ctx := context.Background()
	store := New()
	lock, err := store.Locks.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, lock)
}
