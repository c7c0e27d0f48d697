package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

// Items returns every item of the user in creation order.
func (p *Planner) Items(ctx context.Context) ([]*models.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(p.st.items), nil
}

// Item returns one item by id.
func (p *Planner) Item(ctx context.Context, id string) (*models.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return nil, err
	}
	item, _, err := p.item(id)
	if err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

func (p *Planner) checkItem(item *models.Item) error {
	if item.Kind == "" {
		item.Kind = models.ScheduleEveryWeek
	}
	if err := schedule.ValidateItem(item); err != nil {
		return err
	}
	if item.ProgramID != nil {
		if _, err := p.program(*item.ProgramID); err != nil {
			return err
		}
	}
	return nil
}

// CreateItem validates and stores a new item. Every ordered list picks it
// up at the end on its next read.
func (p *Planner) CreateItem(ctx context.Context, in *models.Item) (_ *models.Item, err error) {
	const op = "create_item"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return nil, err
	}

	item := in.Clone()
	item.ID = uuid.NewString()
	item.UserID = p.userID
	item.Completed = false
	if err := p.checkItem(item); err != nil {
		return nil, err
	}

	created, err := p.store.Items.Create(ctx, item)
	if err != nil {
		return nil, &schedule.PersistenceError{Op: op, Err: err}
	}
	p.st.items = append(slices.Clone(p.st.items), created)

	p.log.WithField("item_id", created.ID).Infof("Created item %q", created.Title)
	return created.Clone(), nil
}

// UpdateItem rewrites an item's authoring fields. Completion and creation
// time are kept.
func (p *Planner) UpdateItem(ctx context.Context, in *models.Item) (_ *models.Item, err error) {
	const op = "update_item"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return nil, err
	}
	cur, i, err := p.item(in.ID)
	if err != nil {
		return nil, err
	}

	item := in.Clone()
	item.UserID = p.userID
	item.Completed = cur.Completed
	item.CreatedAt = cur.CreatedAt
	if err := p.checkItem(item); err != nil {
		return nil, err
	}

	next := p.st
	next.items = withItem(p.st.items, i, item)
	if err := p.commit(op, next, func() error {
		_, err := p.store.Items.Update(ctx, item)
		return err
	}); err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

// DeleteItem removes an item. Stored orders, skips and templates that
// still name it simply stop matching.
func (p *Planner) DeleteItem(ctx context.Context, id string) (err error) {
	const op = "delete_item"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	if _, _, err := p.item(id); err != nil {
		return err
	}

	next := p.st
	next.items = slices.DeleteFunc(slices.Clone(p.st.items), func(item *models.Item) bool {
		return item.ID == id
	})
	return p.commit(op, next, func() error {
		return p.store.Items.Delete(ctx, p.userID, id)
	})
}

// SetCompleted flips an item's completion. In timeline mode, when ordering
// is not locked, the timeline is repartitioned once so completed items
// sink to the bottom.
func (p *Planner) SetCompleted(ctx context.Context, id string, completed bool) (err error) {
	const op = "set_completed"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	cur, i, err := p.item(id)
	if err != nil {
		return err
	}
	if cur.Completed == completed {
		return nil
	}

	now := p.now()
	item := cur.Clone()
	item.Completed = completed

	next := p.st
	next.items = withItem(p.st.items, i, item)

	var order []string
	if p.st.mode == models.SortModeTimeline && !p.locked(now) {
		done := make(map[string]bool, len(next.items))
		for _, it := range next.items {
			done[it.ID] = it.Completed
		}
		order = schedule.CompletedLastIDs(p.timelineOrder(), func(id string) bool { return done[id] })
		next.orders = withOrder(p.st.orders, models.ScopeTimeline, order)
	}

	return p.commit(op, next, func() error {
		if err := p.store.Items.SetCompleted(ctx, p.userID, id, completed); err != nil {
			return err
		}
		if order == nil {
			return nil
		}
		if err := p.store.Orders.Save(ctx, p.orderRecord(models.ScopeTimeline, order, now)); err != nil {
			var result *multierror.Error
			result = multierror.Append(result, err)
			if undo := p.store.Items.SetCompleted(ctx, p.userID, id, !completed); undo != nil {
				result = multierror.Append(result, fmt.Errorf("undo completion: %w", undo))
			}
			return result.ErrorOrNil()
		}
		return nil
	})
}

// SetDayExclusion stores the weekdays on which an item is never shown.
// An empty set clears it.
func (p *Planner) SetDayExclusion(ctx context.Context, itemID string, weekdays []int) (err error) {
	const op = "set_day_exclusion"
	defer func() { p.metrics.Observe(op, err) }()

	if err := schedule.ValidateWeekdays(weekdays); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	if _, _, err := p.item(itemID); err != nil {
		return err
	}

	days := slices.Clone(weekdays)
	slices.Sort(days)
	days = slices.Compact(days)

	next := p.st
	next.exclusions = make(schedule.WeekdayExclusions, len(p.st.exclusions)+1)
	for k, v := range p.st.exclusions {
		next.exclusions[k] = v
	}
	if len(days) == 0 {
		delete(next.exclusions, itemID)
	} else {
		next.exclusions[itemID] = days
	}

	return p.commit(op, next, func() error {
		return p.store.Days.Save(ctx, &models.DayExclusion{UserID: p.userID, ItemID: itemID, Weekdays: days})
	})
}

// DayExclusion returns the stored weekday exclusions of an item.
func (p *Planner) DayExclusion(ctx context.Context, itemID string) ([]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return nil, err
	}
	if _, _, err := p.item(itemID); err != nil {
		return nil, err
	}
	return slices.Clone(p.st.exclusions[itemID]), nil
}
