package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
)

const itemColumns = `id, user_id, program_id, title, context, schedule_kind, weekdays, dates, cycle_week, completed, start_time, reminder_minutes, created_at, updated_at`

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new scheduled item repository
func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	item := &models.Item{}
	var weekdays []int64
	var dates []string
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.ProgramID,
		&item.Title,
		&item.Context,
		&item.Kind,
		pq.Array(&weekdays),
		pq.Array(&dates),
		&item.CycleWeek,
		&item.Completed,
		&item.StartTime,
		&item.ReminderMinutes,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Weekdays = toInts(weekdays)
	if len(dates) > 0 {
		item.Dates = dates
	}
	return item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `
		INSERT INTO items (id, user_id, program_id, title, context, schedule_kind, weekdays, dates, cycle_week, completed, start_time, reminder_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		item.ID,
		item.UserID,
		item.ProgramID,
		item.Title,
		item.Context,
		item.Kind,
		pq.Array(toInt64s(item.Weekdays)),
		pq.Array(item.Dates),
		item.CycleWeek,
		item.Completed,
		item.StartTime,
		item.ReminderMinutes,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

func (r *itemRepository) GetByID(ctx context.Context, userID int64, id string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = $1 AND id = $2`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

func (r *itemRepository) List(ctx context.Context, userID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `
		UPDATE items
		SET program_id = $3, title = $4, context = $5, schedule_kind = $6, weekdays = $7, dates = $8,
			cycle_week = $9, completed = $10, start_time = $11, reminder_minutes = $12, updated_at = $13
		WHERE user_id = $1 AND id = $2
		RETURNING updated_at`

	item.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		item.UserID,
		item.ID,
		item.ProgramID,
		item.Title,
		item.Context,
		item.Kind,
		pq.Array(toInt64s(item.Weekdays)),
		pq.Array(item.Dates),
		item.CycleWeek,
		item.Completed,
		item.StartTime,
		item.ReminderMinutes,
		item.UpdatedAt,
	).Scan(&item.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", item.ID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return item, nil
}

func (r *itemRepository) SetCompleted(ctx context.Context, userID int64, id string, completed bool) error {
	query := `UPDATE items SET completed = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id, completed, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set item completion: %w", err)
	}

	return expectRow(result, "item "+id)
}

func (r *itemRepository) SetTimings(ctx context.Context, userID int64, timings []models.Timing) error {
	query := `UPDATE items SET start_time = $3, reminder_minutes = $4, updated_at = $5 WHERE user_id = $1 AND id = $2`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare timing update: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, t := range timings {
			result, err := stmt.ExecContext(ctx, userID, t.ItemID, t.StartTime, t.ReminderMinutes, now)
			if err != nil {
				return fmt.Errorf("failed to update timing of item %s: %w", t.ItemID, err)
			}
			if err := expectRow(result, "item "+t.ItemID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *itemRepository) Delete(ctx context.Context, userID int64, id string) error {
	query := `DELETE FROM items WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return expectRow(result, "item "+id)
}
