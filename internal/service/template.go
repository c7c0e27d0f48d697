package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

// Templates returns the user's templates, default first, then by name.
func (p *Planner) Templates(ctx context.Context) ([]*models.ScheduleTemplate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(p.st.templates), nil
}

func (p *Planner) template(id string) (*models.ScheduleTemplate, error) {
	for _, t := range p.st.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("template %s: %w", id, repository.ErrNotFound)
}

func sortTemplates(templates []*models.ScheduleTemplate) {
	slices.SortStableFunc(templates, func(a, b *models.ScheduleTemplate) int {
		if a.IsDefault != b.IsDefault {
			if a.IsDefault {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
}

// withDefault returns copies of templates with only id marked default.
func withDefault(templates []*models.ScheduleTemplate, id string) []*models.ScheduleTemplate {
	out := make([]*models.ScheduleTemplate, len(templates))
	for i, t := range templates {
		if t.IsDefault == (t.ID == id) {
			out[i] = t
			continue
		}
		c := *t
		c.IsDefault = t.ID == id
		out[i] = &c
	}
	sortTemplates(out)
	return out
}

// Capture saves the current timeline order with every item's start time
// and reminder under name.
func (p *Planner) Capture(ctx context.Context, name string, isDefault bool) (_ *models.ScheduleTemplate, err error) {
	const op = "capture_template"
	defer func() { p.metrics.Observe(op, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, schedule.Invalidf("template name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Item, len(p.st.items))
	for _, item := range p.st.items {
		byID[item.ID] = item
	}
	order := p.timelineOrder()
	entries := make([]models.TemplateEntry, 0, len(order))
	for _, id := range order {
		item := byID[id]
		entries = append(entries, models.TemplateEntry{
			ItemID:          id,
			StartTime:       cloneString(item.StartTime),
			ReminderMinutes: cloneInt(item.ReminderMinutes),
		})
	}

	now := p.now()
	tmpl := &models.ScheduleTemplate{
		ID:        uuid.NewString(),
		UserID:    p.userID,
		Name:      name,
		IsDefault: isDefault,
		Entries:   entries,
		CreatedAt: now,
		UpdatedAt: now,
	}

	next := p.st
	next.templates = append(slices.Clone(p.st.templates), tmpl)
	if isDefault {
		next.templates = withDefault(next.templates, tmpl.ID)
	} else {
		sortTemplates(next.templates)
	}

	if err := p.commit(op, next, func() error {
		return p.store.Templates.Create(ctx, tmpl)
	}); err != nil {
		return nil, err
	}
	p.log.WithField("template_id", tmpl.ID).Infof("Captured template %q with %d entries", name, len(entries))
	return tmpl, nil
}

// SetDefault makes id the only default template. An empty id clears the
// default.
func (p *Planner) SetDefault(ctx context.Context, id string) (err error) {
	const op = "set_default_template"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	if id != "" {
		if _, err := p.template(id); err != nil {
			return err
		}
	}

	next := p.st
	next.templates = withDefault(p.st.templates, id)
	return p.commit(op, next, func() error {
		return p.store.Templates.SetDefault(ctx, p.userID, id)
	})
}

// DeleteTemplate removes a template.
func (p *Planner) DeleteTemplate(ctx context.Context, id string) (err error) {
	const op = "delete_template"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	if _, err := p.template(id); err != nil {
		return err
	}

	next := p.st
	next.templates = slices.DeleteFunc(slices.Clone(p.st.templates), func(t *models.ScheduleTemplate) bool {
		return t.ID == id
	})
	return p.commit(op, next, func() error {
		return p.store.Templates.Delete(ctx, p.userID, id)
	})
}

// Apply puts the template's items first in the timeline, in template
// order, and overwrites their start times and reminders. Entries whose item
// no longer exists are ignored. Either every remaining entry is applied or
// none is.
func (p *Planner) Apply(ctx context.Context, id string) (err error) {
	const op = "apply_template"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	return p.apply(ctx, op, id)
}

// ApplyDefault applies the default template.
func (p *Planner) ApplyDefault(ctx context.Context) (err error) {
	const op = "apply_template"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	for _, t := range p.st.templates {
		if t.IsDefault {
			return p.apply(ctx, op, t.ID)
		}
	}
	return schedule.Invalidf("no default template")
}

func (p *Planner) apply(ctx context.Context, op, id string) error {
	now := p.now()
	if p.locked(now) {
		return p.blocked(op)
	}
	tmpl, err := p.template(id)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(p.st.items))
	for i, item := range p.st.items {
		index[item.ID] = i
	}

	items := slices.Clone(p.st.items)
	var timings, previous []models.Timing
	for _, e := range tmpl.Entries {
		i, ok := index[e.ItemID]
		if !ok {
			continue
		}
		cur := p.st.items[i]
		previous = append(previous, cur.Timing())

		item := cur.Clone()
		item.StartTime = cloneString(e.StartTime)
		item.ReminderMinutes = cloneInt(e.ReminderMinutes)
		items[i] = item
		timings = append(timings, item.Timing())
	}
	order := schedule.PlaceFirst(p.timelineOrder(), tmpl.ItemIDs())

	next := p.st
	next.items = items
	next.orders = withOrder(p.st.orders, models.ScopeTimeline, order)

	if err := p.commit(op, next, func() error {
		if err := p.store.Items.SetTimings(ctx, p.userID, timings); err != nil {
			return err
		}
		if err := p.store.Orders.Save(ctx, p.orderRecord(models.ScopeTimeline, order, now)); err != nil {
			var result *multierror.Error
			result = multierror.Append(result, err)
			if undo := p.store.Items.SetTimings(ctx, p.userID, previous); undo != nil {
				result = multierror.Append(result, fmt.Errorf("undo timings: %w", undo))
			}
			return result.ErrorOrNil()
		}
		return nil
	}); err != nil {
		return err
	}

	p.log.WithField("template_id", id).Infof("Applied template %q to %d items", tmpl.Name, len(timings))
	return nil
}
