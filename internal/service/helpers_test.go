package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
	"github.com/Kerhoff/dayplan/internal/repository/memory"
	"github.com/Kerhoff/dayplan/pkg/logger"
)

var errStoreDown = errors.New("store unavailable")

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type failingOrders struct {
	repository.OrderRepository
	fail bool
}

func (f *failingOrders) Save(ctx context.Context, record *models.OrderRecord) error {
	if f.fail {
		return errStoreDown
	}
	return f.OrderRepository.Save(ctx, record)
}

type failingSkips struct {
	repository.SkipRepository
	fail bool
}

func (f *failingSkips) Upsert(ctx context.Context, record *models.SkipRecord) error {
	if f.fail {
		return errStoreDown
	}
	return f.SkipRepository.Upsert(ctx, record)
}

func (f *failingSkips) Delete(ctx context.Context, userID int64, itemID, date string) error {
	if f.fail {
		return errStoreDown
	}
	return f.SkipRepository.Delete(ctx, userID, itemID, date)
}

type fixture struct {
	ctx     context.Context
	clock   *clock
	store   repository.Store
	orders  *failingOrders
	skips   *failingSkips
	service *Service
	planner *Planner
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	store := memory.New()
	orders := &failingOrders{OrderRepository: store.Orders}
	skips := &failingSkips{SkipRepository: store.Skips}
	store.Orders = orders
	store.Skips = skips

	clk := &clock{now: now}
	svc := New(store, logger.Discard(), WithClock(clk.Now))

	ctx := context.Background()
	user, err := svc.EnsureUser(ctx, 1001, "alice", "Alice", "", 42)
	require.NoError(t, err)
	p, err := svc.Planner(ctx, user.ID)
	require.NoError(t, err)

	return &fixture{ctx: ctx, clock: clk, store: store, orders: orders, skips: skips, service: svc, planner: p}
}

func (f *fixture) item(t *testing.T, title string, c models.GroupingContext) *models.Item {
	t.Helper()
	item, err := f.planner.CreateItem(f.ctx, &models.Item{Title: title, Context: c})
	require.NoError(t, err)
	return item
}

func (f *fixture) titles(t *testing.T, scope models.Scope) []string {
	t.Helper()
	v, err := f.planner.View(f.ctx, scope)
	require.NoError(t, err)
	out := make([]string, len(v.Items))
	for i, item := range v.Items {
		out[i] = item.Title
	}
	return out
}

func (f *fixture) storedOrder(t *testing.T, scope models.Scope) []string {
	t.Helper()
	records, err := f.store.Orders.List(f.ctx, f.planner.UserID())
	require.NoError(t, err)
	for _, rec := range records {
		if rec.Scope == scope {
			return rec.OrderedIDs
		}
	}
	return nil
}

func ids(items ...*models.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func strp(s string) *string { return &s }

func intp(n int) *int { return &n }
