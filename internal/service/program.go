package service

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

// Programs returns the user's cycle programs by name.
func (p *Planner) Programs(ctx context.Context) ([]*models.CycleProgram, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	out := make([]*models.CycleProgram, 0, len(p.st.programs))
	for _, prog := range p.st.programs {
		out = append(out, prog)
	}
	slices.SortFunc(out, func(a, b *models.CycleProgram) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// CreateProgram validates and stores a new program container.
func (p *Planner) CreateProgram(ctx context.Context, in *models.CycleProgram) (_ *models.CycleProgram, err error) {
	const op = "create_program"
	defer func() { p.metrics.Observe(op, err) }()

	prog := *in
	prog.ID = uuid.NewString()
	prog.UserID = p.userID
	prog.Name = strings.TrimSpace(prog.Name)
	if err := schedule.ValidateProgram(&prog); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return nil, err
	}

	created, err := p.store.Programs.Create(ctx, &prog)
	if err != nil {
		return nil, &schedule.PersistenceError{Op: op, Err: err}
	}
	programs := maps.Clone(p.st.programs)
	if programs == nil {
		programs = make(map[string]*models.CycleProgram)
	}
	programs[created.ID] = created
	p.st.programs = programs

	p.log.WithField("program_id", created.ID).Infof("Created %s program %q", created.Type, created.Name)
	return created, nil
}

// UpdateProgram changes a program's name, type, start date or length.
// Items tagged beyond a shortened length stay in the program as dormant.
func (p *Planner) UpdateProgram(ctx context.Context, in *models.CycleProgram) (_ *models.CycleProgram, err error) {
	const op = "update_program"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return nil, err
	}
	cur, err := p.program(in.ID)
	if err != nil {
		return nil, err
	}

	prog := *in
	prog.UserID = p.userID
	prog.Name = strings.TrimSpace(prog.Name)
	prog.CreatedAt = cur.CreatedAt
	if err := schedule.ValidateProgram(&prog); err != nil {
		return nil, err
	}

	next := p.st
	next.programs = maps.Clone(p.st.programs)
	next.programs[prog.ID] = &prog
	if err := p.commit(op, next, func() error {
		_, err := p.store.Programs.Update(ctx, &prog)
		return err
	}); err != nil {
		return nil, err
	}
	return &prog, nil
}

// Buckets returns every bucket of a program, each in its own order.
func (p *Planner) Buckets(ctx context.Context, programID string) (*schedule.Buckets, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	prog, err := p.program(programID)
	if err != nil {
		return nil, err
	}
	b := schedule.Group(prog, p.st.items, p.now())
	b.Sort(p.st.orders)
	return b, nil
}

// ProgramToday returns the program's items due this week that are also
// shown today: the current week's bucket, then the every-week bucket.
func (p *Planner) ProgramToday(ctx context.Context, programID string) ([]*models.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	prog, err := p.program(programID)
	if err != nil {
		return nil, err
	}
	now := p.now()
	b := schedule.Group(prog, p.st.items, now)
	b.Sort(p.st.orders)

	visible, _ := p.filter(now).Split(b.Current())
	return visible, nil
}

// MoveToWeek retags an item of a program for week n; 0 moves it to the
// every-week bucket. The item lands at the end of its new bucket.
func (p *Planner) MoveToWeek(ctx context.Context, itemID string, week int) (err error) {
	const op = "move_to_week"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	cur, i, err := p.item(itemID)
	if err != nil {
		return err
	}
	if cur.ProgramID == nil {
		return schedule.Invalidf("item %s is not part of a program", itemID)
	}
	prog, err := p.program(*cur.ProgramID)
	if err != nil {
		return err
	}
	if week < 0 || week > prog.LengthWeeks {
		return schedule.Invalidf("week %d is outside 0..%d", week, prog.LengthWeeks)
	}

	item := cur.Clone()
	switch {
	case week > 0:
		item.Kind = models.ScheduleCycleWeek
		item.Weekdays, item.Dates = nil, nil
	case item.Kind == models.ScheduleCycleWeek:
		item.Kind = models.ScheduleEveryWeek
	}
	item.CycleWeek = week
	if err := schedule.ValidateItem(item); err != nil {
		return err
	}

	next := p.st
	next.items = withItem(p.st.items, i, item)
	return p.commit(op, next, func() error {
		_, err := p.store.Items.Update(ctx, item)
		return err
	})
}
