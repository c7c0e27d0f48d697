package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/metrics"
	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

// Planner holds one user's scheduling state. Every mutation stages a whole
// new state, writes it, and puts the previous state back if a write fails,
// so partial application is never visible. Staged states share nothing
// mutable with the live one: slices and maps are replaced, never edited.
type Planner struct {
	userID  int64
	store   repository.Store
	log     *logrus.Entry
	metrics *metrics.Metrics
	now     func() time.Time

	mu     sync.Mutex
	loaded bool
	st     state
}

type state struct {
	mode       models.SortMode
	items      []*models.Item
	programs   map[string]*models.CycleProgram
	orders     map[models.Scope][]string
	lock       *models.OrderLock
	skipDate   string
	skipped    map[string]bool
	exclusions schedule.WeekdayExclusions
	templates  []*models.ScheduleTemplate
}

// UserID returns the owner of the planner.
func (p *Planner) UserID() int64 {
	return p.userID
}

func (p *Planner) today() string {
	return p.now().Format(models.DateLayout)
}

func (p *Planner) load(ctx context.Context) error {
	user, err := p.store.Users.GetByID(ctx, p.userID)
	if err != nil {
		return err
	}
	items, err := p.store.Items.List(ctx, p.userID)
	if err != nil {
		return err
	}
	programs, err := p.store.Programs.List(ctx, p.userID)
	if err != nil {
		return err
	}
	orders, err := p.store.Orders.List(ctx, p.userID)
	if err != nil {
		return err
	}
	lock, err := p.store.Locks.Get(ctx, p.userID)
	if err != nil {
		return err
	}
	today := p.today()
	skipped, err := p.loadSkips(ctx, today)
	if err != nil {
		return err
	}
	exclusions, err := p.store.Days.List(ctx, p.userID)
	if err != nil {
		return err
	}
	templates, err := p.store.Templates.List(ctx, p.userID)
	if err != nil {
		return err
	}

	st := state{
		mode:       user.SortMode,
		items:      items,
		programs:   make(map[string]*models.CycleProgram, len(programs)),
		orders:     make(map[models.Scope][]string, len(orders)),
		lock:       lock,
		skipDate:   today,
		skipped:    skipped,
		exclusions: make(schedule.WeekdayExclusions, len(exclusions)),
		templates:  templates,
	}
	if !st.mode.Valid() {
		st.mode = models.SortModeManual
	}
	for _, prog := range programs {
		st.programs[prog.ID] = prog
	}
	for _, rec := range orders {
		st.orders[rec.Scope] = rec.OrderedIDs
	}
	for _, ex := range exclusions {
		st.exclusions[ex.ItemID] = ex.Weekdays
	}

	p.st = st
	p.loaded = true
	return nil
}

func (p *Planner) loadSkips(ctx context.Context, date string) (map[string]bool, error) {
	records, err := p.store.Skips.ListByDate(ctx, p.userID, date)
	if err != nil {
		return nil, err
	}
	skipped := make(map[string]bool, len(records))
	for _, rec := range records {
		skipped[rec.ItemID] = true
	}
	return skipped, nil
}

// ensure makes sure state is loaded and the skip ledger is for today.
func (p *Planner) ensure(ctx context.Context) error {
	if !p.loaded {
		return p.load(ctx)
	}
	today := p.today()
	if p.st.skipDate == today {
		return nil
	}
	skipped, err := p.loadSkips(ctx, today)
	if err != nil {
		return err
	}
	p.st.skipDate, p.st.skipped = today, skipped
	return nil
}

// refresh reloads everything from the store so that writes from another
// device show up; on failure the cached state keeps serving reads.
func (p *Planner) refresh(ctx context.Context) error {
	if err := p.load(ctx); err != nil {
		if !p.loaded {
			return err
		}
		p.log.WithError(err).Warn("Reload failed, serving cached planner state")
		return p.ensure(ctx)
	}
	return nil
}

// commit swaps in next and persists it, restoring the current state if
// persist fails.
func (p *Planner) commit(op string, next state, persist func() error) error {
	if err := schedule.Commit(op, &p.st, next, persist); err != nil {
		p.log.WithError(err).WithField("op", op).Warn("Write failed, local state rolled back")
		return err
	}
	return nil
}

func (p *Planner) locked(now time.Time) bool {
	return schedule.LockActive(p.st.lock, now)
}

func (p *Planner) blocked(op string) error {
	p.log.WithField("op", op).Info("Blocked by order lock")
	return fmt.Errorf("%s: %w", op, schedule.ErrLocked)
}

func (p *Planner) item(id string) (*models.Item, int, error) {
	for i, item := range p.st.items {
		if item.ID == id {
			return item, i, nil
		}
	}
	return nil, -1, fmt.Errorf("item %s: %w", id, repository.ErrNotFound)
}

func (p *Planner) program(id string) (*models.CycleProgram, error) {
	prog, ok := p.st.programs[id]
	if !ok {
		return nil, fmt.Errorf("program %s: %w", id, repository.ErrNotFound)
	}
	return prog, nil
}

func (p *Planner) filter(now time.Time) *schedule.Filter {
	weeks := make(map[string]int, len(p.st.programs))
	for id, prog := range p.st.programs {
		if w, ok := schedule.CurrentWeek(prog, now); ok {
			weeks[id] = w
		}
	}
	return &schedule.Filter{
		Today:    now,
		Skipped:  p.st.skipped,
		Schedule: schedule.Schedules{schedule.ItemSchedule{}, p.st.exclusions},
		Weeks:    weeks,
	}
}

func (p *Planner) inContext(c models.GroupingContext) []*models.Item {
	var out []*models.Item
	for _, item := range p.st.items {
		if item.Context == c {
			out = append(out, item)
		}
	}
	return out
}

func withOrder(orders map[models.Scope][]string, scope models.Scope, ids []string) map[models.Scope][]string {
	next := maps.Clone(orders)
	if next == nil {
		next = make(map[models.Scope][]string)
	}
	next[scope] = ids
	return next
}

func withItem(items []*models.Item, i int, item *models.Item) []*models.Item {
	next := slices.Clone(items)
	next[i] = item
	return next
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
