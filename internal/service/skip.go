package service

import (
	"context"
	"maps"

	"github.com/Kerhoff/dayplan/internal/models"
)

// Skip hides an item for today only. Skipping twice is a no-op.
func (p *Planner) Skip(ctx context.Context, itemID string) (err error) {
	const op = "skip"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	if _, _, err := p.item(itemID); err != nil {
		return err
	}
	if p.st.skipped[itemID] {
		return nil
	}

	now := p.now()
	date := p.st.skipDate
	next := p.st
	next.skipped = maps.Clone(p.st.skipped)
	if next.skipped == nil {
		next.skipped = make(map[string]bool)
	}
	next.skipped[itemID] = true

	return p.commit(op, next, func() error {
		return p.store.Skips.Upsert(ctx, &models.SkipRecord{
			UserID:    p.userID,
			ItemID:    itemID,
			Date:      date,
			CreatedAt: now,
		})
	})
}

// Restore undoes today's skip of an item. Restoring an item that is not
// skipped is a no-op.
func (p *Planner) Restore(ctx context.Context, itemID string) (err error) {
	const op = "restore"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	if _, _, err := p.item(itemID); err != nil {
		return err
	}
	if !p.st.skipped[itemID] {
		return nil
	}

	date := p.st.skipDate
	next := p.st
	next.skipped = maps.Clone(p.st.skipped)
	delete(next.skipped, itemID)

	return p.commit(op, next, func() error {
		return p.store.Skips.Delete(ctx, p.userID, itemID, date)
	})
}

// Skipped returns the ids skipped today.
func (p *Planner) Skipped(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(p.st.skipped))
	for _, item := range p.st.items {
		if p.st.skipped[item.ID] {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}
