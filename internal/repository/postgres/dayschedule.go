package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
)

type dayScheduleRepository struct {
	db *sql.DB
}

// NewDayScheduleRepository creates a new weekday exclusion repository
func NewDayScheduleRepository(db *sql.DB) repository.DayScheduleRepository {
	return &dayScheduleRepository{db: db}
}

func (r *dayScheduleRepository) List(ctx context.Context, userID int64) ([]*models.DayExclusion, error) {
	query := `
		SELECT user_id, item_id, weekdays
		FROM day_schedules
		WHERE user_id = $1
		ORDER BY item_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query day schedules: %w", err)
	}
	defer rows.Close()

	var out []*models.DayExclusion
	for rows.Next() {
		ex := &models.DayExclusion{}
		var weekdays []int64
		if err := rows.Scan(&ex.UserID, &ex.ItemID, pq.Array(&weekdays)); err != nil {
			return nil, fmt.Errorf("failed to scan day schedule: %w", err)
		}
		ex.Weekdays = toInts(weekdays)
		out = append(out, ex)
	}

	return out, rows.Err()
}

// Save replaces the exclusion set of an item; an empty set removes it.
func (r *dayScheduleRepository) Save(ctx context.Context, exclusion *models.DayExclusion) error {
	if len(exclusion.Weekdays) == 0 {
		_, err := r.db.ExecContext(ctx,
			`DELETE FROM day_schedules WHERE user_id = $1 AND item_id = $2`,
			exclusion.UserID, exclusion.ItemID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear day schedule: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO day_schedules (user_id, item_id, weekdays)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id) DO UPDATE SET weekdays = EXCLUDED.weekdays`

	if _, err := r.db.ExecContext(ctx, query, exclusion.UserID, exclusion.ItemID, pq.Array(toInt64s(exclusion.Weekdays))); err != nil {
		return fmt.Errorf("failed to save day schedule: %w", err)
	}

	return nil
}
