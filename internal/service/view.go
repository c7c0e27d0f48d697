package service

import (
	"context"
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

// View is one ordered list as the user sees it today.
type View struct {
	Scope models.Scope        `json:"scope"`
	Date  string              `json:"date"`
	Mode  models.SortMode     `json:"mode"`
	Lock  schedule.LockStatus `json:"lock"`
	Items []*models.Item      `json:"items"`
	// Hidden lists items of the scope that are off today, with the reason.
	Hidden     []schedule.Hidden `json:"hidden"`
	CycleWeeks map[string]int    `json:"cycle_weeks,omitempty"`
}

// View returns the visible, ordered items of scope for today. Bucket
// scopes are authoring views and are not filtered by day.
func (p *Planner) View(ctx context.Context, scope models.Scope) (*View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	now := p.now()

	candidates, err := p.scopeItems(scope, now)
	if err != nil {
		return nil, err
	}

	f := p.filter(now)
	v := &View{
		Scope:      scope,
		Date:       now.Format(models.DateLayout),
		Mode:       p.st.mode,
		Lock:       schedule.Status(p.st.lock, now),
		CycleWeeks: f.Weeks,
	}

	visible := candidates
	if !scope.IsBucket() {
		visible, v.Hidden = f.Split(candidates)
	}

	switch {
	case scope.IsBucket():
		v.Items = schedule.Arrange(visible, p.st.orders[scope])
	case p.st.mode == models.SortModeAuto:
		v.Items = schedule.CompletedLast(visible)
	case p.st.mode == models.SortModeTimeline:
		v.Items = schedule.Arrange(visible, p.st.orders[models.ScopeTimeline])
	default:
		v.Items = schedule.Arrange(visible, p.st.orders[scope])
	}
	return v, nil
}

// scopeItems returns every live item that belongs to scope, in natural order.
func (p *Planner) scopeItems(scope models.Scope, now time.Time) ([]*models.Item, error) {
	if scope == models.ScopeTimeline {
		return p.st.items, nil
	}
	if programID, week, ok := scope.Bucket(); ok {
		prog, err := p.program(programID)
		if err != nil {
			return nil, err
		}
		if week > prog.LengthWeeks {
			return nil, schedule.Invalidf("program %s has %d weeks", programID, prog.LengthWeeks)
		}
		return schedule.Group(prog, p.st.items, now).Week(week), nil
	}
	c := models.GroupingContext(scope)
	if !c.Valid() {
		return nil, schedule.Invalidf("unknown scope %q", scope)
	}
	return p.inContext(c), nil
}

// Reorder replaces the order of the visible ids of scope with ids. Hidden
// items keep their slots.
func (p *Planner) Reorder(ctx context.Context, scope models.Scope, ids []string) (err error) {
	const op = "reorder"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	now := p.now()
	if p.locked(now) {
		return p.blocked(op)
	}

	switch {
	case scope.IsBucket():
	case p.st.mode == models.SortModeAuto:
		return schedule.Invalidf("auto mode has no stored order to change")
	case p.st.mode == models.SortModeTimeline && scope != models.ScopeTimeline:
		return schedule.Invalidf("timeline mode only orders the %q scope", models.ScopeTimeline)
	case p.st.mode == models.SortModeManual && scope == models.ScopeTimeline:
		return schedule.Invalidf("switch to timeline mode to order the timeline")
	}

	candidates, err := p.scopeItems(scope, now)
	if err != nil {
		return err
	}
	visible := candidates
	if !scope.IsBucket() {
		visible, _ = p.filter(now).Split(candidates)
	}

	stored := schedule.Reconcile(p.st.orders[scope], schedule.IDs(candidates))
	merged, err := schedule.MergeVisible(stored, schedule.IDs(visible), ids)
	if err != nil {
		return err
	}

	next := p.st
	next.orders = withOrder(p.st.orders, scope, merged)
	return p.commit(op, next, func() error {
		return p.store.Orders.Save(ctx, p.orderRecord(scope, merged, now))
	})
}

// SortMode returns the active ordering strategy.
func (p *Planner) SortMode(ctx context.Context) (models.SortMode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return "", err
	}
	return p.st.mode, nil
}

// SetSortMode switches the ordering strategy. Stored orders are kept.
func (p *Planner) SetSortMode(ctx context.Context, mode models.SortMode) (err error) {
	const op = "set_sort_mode"
	defer func() { p.metrics.Observe(op, err) }()

	if !mode.Valid() {
		return schedule.Invalidf("unknown sort mode %q", mode)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	if p.st.mode == mode {
		return nil
	}

	next := p.st
	next.mode = mode
	if err := p.commit(op, next, func() error {
		return p.store.Users.SetSortMode(ctx, p.userID, mode)
	}); err != nil {
		return err
	}
	p.log.WithField("mode", mode).Info("Sort mode changed")
	return nil
}

// timelineOrder is the stored timeline order reconciled against every item.
func (p *Planner) timelineOrder() []string {
	return schedule.Reconcile(p.st.orders[models.ScopeTimeline], schedule.IDs(p.st.items))
}

func (p *Planner) orderRecord(scope models.Scope, ids []string, now time.Time) *models.OrderRecord {
	return &models.OrderRecord{UserID: p.userID, Scope: scope, OrderedIDs: ids, UpdatedAt: now}
}
