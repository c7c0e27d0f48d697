// Package memory keeps every repository in process. It backs tests and
// STORAGE=memory runs; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
)

// New returns a Store whose repositories share one in-memory database.
func New() repository.Store {
	db := &database{
		users:     map[int64]*models.User{},
		items:     map[string]*models.Item{},
		programs:  map[string]*models.CycleProgram{},
		orders:    map[int64]map[models.Scope][]string{},
		locks:     map[int64]*models.OrderLock{},
		skips:     map[skipKey]*models.SkipRecord{},
		templates: map[string]*models.ScheduleTemplate{},
		days:      map[string]*models.DayExclusion{},
	}
	return repository.Store{
		Users:     &userRepository{db},
		Items:     &itemRepository{db},
		Programs:  &programRepository{db},
		Orders:    &orderRepository{db},
		Locks:     &lockRepository{db},
		Skips:     &skipRepository{db},
		Templates: &templateRepository{db},
		Days:      &dayScheduleRepository{db},
	}
}

type skipKey struct {
	userID int64
	itemID string
	date   string
}

type database struct {
	mu        sync.Mutex
	seq       int64
	users     map[int64]*models.User
	items     map[string]*models.Item
	programs  map[string]*models.CycleProgram
	orders    map[int64]map[models.Scope][]string
	locks     map[int64]*models.OrderLock
	skips     map[skipKey]*models.SkipRecord
	templates map[string]*models.ScheduleTemplate
	days      map[string]*models.DayExclusion
}

func (db *database) next() int64 {
	db.seq++
	return db.seq
}

type userRepository struct{ db *database }

func (r *userRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	c := *user
	c.ID = r.db.next()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.SortMode == "" {
		c.SortMode = models.SortModeManual
	}
	r.db.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r *userRepository) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.TelegramID == telegramID {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (r *userRepository) ListActive(_ context.Context) ([]*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var users []*models.User
	for _, u := range r.db.users {
		if u.IsActive {
			out := *u
			users = append(users, &out)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepository) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[user.ID]; !ok {
		return nil, fmt.Errorf("user %d: %w", user.ID, repository.ErrNotFound)
	}
	c := *user
	c.UpdatedAt = time.Now()
	r.db.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r *userRepository) SetSortMode(_ context.Context, id int64, mode models.SortMode) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	u.SortMode = mode
	return nil
}

type itemRepository struct{ db *database }

func (r *itemRepository) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	c := item.Clone()
	// Strictly increasing timestamps keep List in creation order.
	c.CreatedAt = now.Add(time.Duration(r.db.next()))
	c.UpdatedAt = now
	r.db.items[c.ID] = c
	return c.Clone(), nil
}

func (r *itemRepository) GetByID(_ context.Context, userID int64, id string) (*models.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	item, ok := r.db.items[id]
	if !ok || item.UserID != userID {
		return nil, fmt.Errorf("item %s: %w", id, repository.ErrNotFound)
	}
	return item.Clone(), nil
}

func (r *itemRepository) List(_ context.Context, userID int64) ([]*models.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var items []*models.Item
	for _, item := range r.db.items {
		if item.UserID == userID {
			items = append(items, item.Clone())
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *itemRepository) Update(_ context.Context, item *models.Item) (*models.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cur, ok := r.db.items[item.ID]
	if !ok || cur.UserID != item.UserID {
		return nil, fmt.Errorf("item %s: %w", item.ID, repository.ErrNotFound)
	}
	c := item.Clone()
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = time.Now()
	r.db.items[c.ID] = c
	return c.Clone(), nil
}

func (r *itemRepository) SetCompleted(_ context.Context, userID int64, id string, completed bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	item, ok := r.db.items[id]
	if !ok || item.UserID != userID {
		return fmt.Errorf("item %s: %w", id, repository.ErrNotFound)
	}
	item.Completed = completed
	item.UpdatedAt = time.Now()
	return nil
}

func (r *itemRepository) SetTimings(_ context.Context, userID int64, timings []models.Timing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, t := range timings {
		if item, ok := r.db.items[t.ItemID]; !ok || item.UserID != userID {
			return fmt.Errorf("item %s: %w", t.ItemID, repository.ErrNotFound)
		}
	}
	for _, t := range timings {
		item := r.db.items[t.ItemID]
		c := (&models.Item{StartTime: t.StartTime, ReminderMinutes: t.ReminderMinutes}).Clone()
		item.StartTime, item.ReminderMinutes = c.StartTime, c.ReminderMinutes
		item.UpdatedAt = time.Now()
	}
	return nil
}

func (r *itemRepository) Delete(_ context.Context, userID int64, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	item, ok := r.db.items[id]
	if !ok || item.UserID != userID {
		return fmt.Errorf("item %s: %w", id, repository.ErrNotFound)
	}
	delete(r.db.items, id)
	delete(r.db.days, id)
	return nil
}

type programRepository struct{ db *database }

func (r *programRepository) Create(_ context.Context, program *models.CycleProgram) (*models.CycleProgram, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	c := *program
	c.CreatedAt, c.UpdatedAt = now, now
	r.db.programs[c.ID] = &c
	out := c
	return &out, nil
}

func (r *programRepository) GetByID(_ context.Context, userID int64, id string) (*models.CycleProgram, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.programs[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("program %s: %w", id, repository.ErrNotFound)
	}
	out := *p
	return &out, nil
}

func (r *programRepository) List(_ context.Context, userID int64) ([]*models.CycleProgram, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var programs []*models.CycleProgram
	for _, p := range r.db.programs {
		if p.UserID == userID {
			out := *p
			programs = append(programs, &out)
		}
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i].Name < programs[j].Name })
	return programs, nil
}

func (r *programRepository) Update(_ context.Context, program *models.CycleProgram) (*models.CycleProgram, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cur, ok := r.db.programs[program.ID]
	if !ok || cur.UserID != program.UserID {
		return nil, fmt.Errorf("program %s: %w", program.ID, repository.ErrNotFound)
	}
	c := *program
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = time.Now()
	r.db.programs[c.ID] = &c
	out := c
	return &out, nil
}

type orderRepository struct{ db *database }

func (r *orderRepository) List(_ context.Context, userID int64) ([]*models.OrderRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var records []*models.OrderRecord
	for scope, ids := range r.db.orders[userID] {
		records = append(records, &models.OrderRecord{UserID: userID, Scope: scope, OrderedIDs: slices.Clone(ids)})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Scope < records[j].Scope })
	return records, nil
}

func (r *orderRepository) Save(_ context.Context, record *models.OrderRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.orders[record.UserID] == nil {
		r.db.orders[record.UserID] = map[models.Scope][]string{}
	}
	r.db.orders[record.UserID][record.Scope] = slices.Clone(record.OrderedIDs)
	return nil
}

type lockRepository struct{ db *database }

func (r *lockRepository) Get(_ context.Context, userID int64) (*models.OrderLock, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.locks[userID]
	if !ok {
		return nil, nil
	}
	out := *l
	out.Weekdays = slices.Clone(l.Weekdays)
	return &out, nil
}

func (r *lockRepository) Save(_ context.Context, lock *models.OrderLock) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c := *lock
	c.Weekdays = slices.Clone(lock.Weekdays)
	r.db.locks[lock.UserID] = &c
	return nil
}

func (r *lockRepository) Delete(_ context.Context, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.locks, userID)
	return nil
}

type skipRepository struct{ db *database }

func (r *skipRepository) ListByDate(_ context.Context, userID int64, date string) ([]*models.SkipRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var records []*models.SkipRecord
	for k, rec := range r.db.skips {
		if k.userID == userID && k.date == date {
			out := *rec
			records = append(records, &out)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ItemID < records[j].ItemID })
	return records, nil
}

func (r *skipRepository) Upsert(_ context.Context, record *models.SkipRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c := *record
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.db.skips[skipKey{record.UserID, record.ItemID, record.Date}] = &c
	return nil
}

func (r *skipRepository) Delete(_ context.Context, userID int64, itemID, date string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.skips, skipKey{userID, itemID, date})
	return nil
}

type templateRepository struct{ db *database }

func cloneTemplate(t *models.ScheduleTemplate) *models.ScheduleTemplate {
	c := *t
	c.Entries = make([]models.TemplateEntry, len(t.Entries))
	for i, e := range t.Entries {
		timing := (&models.Item{StartTime: e.StartTime, ReminderMinutes: e.ReminderMinutes}).Clone()
		c.Entries[i] = models.TemplateEntry{ItemID: e.ItemID, StartTime: timing.StartTime, ReminderMinutes: timing.ReminderMinutes}
	}
	return &c
}

func (r *templateRepository) Create(_ context.Context, template *models.ScheduleTemplate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if template.IsDefault {
		for _, t := range r.db.templates {
			if t.UserID == template.UserID {
				t.IsDefault = false
			}
		}
	}
	r.db.templates[template.ID] = cloneTemplate(template)
	return nil
}

func (r *templateRepository) GetByID(_ context.Context, userID int64, id string) (*models.ScheduleTemplate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.templates[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("template %s: %w", id, repository.ErrNotFound)
	}
	return cloneTemplate(t), nil
}

func (r *templateRepository) List(_ context.Context, userID int64) ([]*models.ScheduleTemplate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var templates []*models.ScheduleTemplate
	for _, t := range r.db.templates {
		if t.UserID == userID {
			templates = append(templates, cloneTemplate(t))
		}
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].IsDefault != templates[j].IsDefault {
			return templates[i].IsDefault
		}
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (r *templateRepository) SetDefault(_ context.Context, userID int64, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if id != "" {
		if t, ok := r.db.templates[id]; !ok || t.UserID != userID {
			return fmt.Errorf("template %s: %w", id, repository.ErrNotFound)
		}
	}
	for _, t := range r.db.templates {
		if t.UserID == userID {
			t.IsDefault = t.ID == id
		}
	}
	return nil
}

func (r *templateRepository) Delete(_ context.Context, userID int64, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.templates[id]
	if !ok || t.UserID != userID {
		return fmt.Errorf("template %s: %w", id, repository.ErrNotFound)
	}
	delete(r.db.templates, id)
	return nil
}

type dayScheduleRepository struct{ db *database }

func (r *dayScheduleRepository) List(_ context.Context, userID int64) ([]*models.DayExclusion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []*models.DayExclusion
	for _, ex := range r.db.days {
		if ex.UserID == userID {
			c := *ex
			c.Weekdays = slices.Clone(ex.Weekdays)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (r *dayScheduleRepository) Save(_ context.Context, exclusion *models.DayExclusion) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if len(exclusion.Weekdays) == 0 {
		delete(r.db.days, exclusion.ItemID)
		return nil
	}
	c := *exclusion
	c.Weekdays = slices.Clone(exclusion.Weekdays)
	r.db.days[c.ItemID] = &c
	return nil
}
