package repository

import (
	"context"
	"errors"

	"github.com/Kerhoff/dayplan/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user data operations.
// GetByTelegramID returns nil, nil when no user matches.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListActive(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SetSortMode(ctx context.Context, id int64, mode models.SortMode) error
}

// ItemRepository defines the interface for scheduled item operations.
// List returns items in creation order.
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, userID int64, id string) (*models.Item, error)
	List(ctx context.Context, userID int64) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	SetCompleted(ctx context.Context, userID int64, id string, completed bool) error
	// SetTimings writes all timings or none.
	SetTimings(ctx context.Context, userID int64, timings []models.Timing) error
	Delete(ctx context.Context, userID int64, id string) error
}

// ProgramRepository defines the interface for cycle program operations
type ProgramRepository interface {
	Create(ctx context.Context, program *models.CycleProgram) (*models.CycleProgram, error)
	GetByID(ctx context.Context, userID int64, id string) (*models.CycleProgram, error)
	List(ctx context.Context, userID int64) ([]*models.CycleProgram, error)
	Update(ctx context.Context, program *models.CycleProgram) (*models.CycleProgram, error)
}

// OrderRepository persists explicit orders per scope
type OrderRepository interface {
	List(ctx context.Context, userID int64) ([]*models.OrderRecord, error)
	Save(ctx context.Context, record *models.OrderRecord) error
}

// LockRepository persists the single order lock of a user
type LockRepository interface {
	// Get returns nil when the user has no lock.
	Get(ctx context.Context, userID int64) (*models.OrderLock, error)
	Save(ctx context.Context, lock *models.OrderLock) error
	Delete(ctx context.Context, userID int64) error
}

// SkipRepository persists manual skips keyed by (user, item, date)
type SkipRepository interface {
	ListByDate(ctx context.Context, userID int64, date string) ([]*models.SkipRecord, error)
	// Upsert is idempotent on (user, item, date).
	Upsert(ctx context.Context, record *models.SkipRecord) error
	Delete(ctx context.Context, userID int64, itemID, date string) error
}

// TemplateRepository persists schedule templates with their entries
type TemplateRepository interface {
	Create(ctx context.Context, template *models.ScheduleTemplate) error
	GetByID(ctx context.Context, userID int64, id string) (*models.ScheduleTemplate, error)
	List(ctx context.Context, userID int64) ([]*models.ScheduleTemplate, error)
	// SetDefault makes id the only default template; an empty id clears it.
	SetDefault(ctx context.Context, userID int64, id string) error
	Delete(ctx context.Context, userID int64, id string) error
}

// DayScheduleRepository exposes the stored weekday exclusions per item
type DayScheduleRepository interface {
	List(ctx context.Context, userID int64) ([]*models.DayExclusion, error)
	Save(ctx context.Context, exclusion *models.DayExclusion) error
}

// Store bundles every repository a planner needs
type Store struct {
	Users     UserRepository
	Items     ItemRepository
	Programs  ProgramRepository
	Orders    OrderRepository
	Locks     LockRepository
	Skips     SkipRepository
	Templates TemplateRepository
	Days      DayScheduleRepository
}
