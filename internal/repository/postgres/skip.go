package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
)

type skipRepository struct {
	db *sql.DB
}

// NewSkipRepository creates a new skip record repository
func NewSkipRepository(db *sql.DB) repository.SkipRepository {
	return &skipRepository{db: db}
}

func (r *skipRepository) ListByDate(ctx context.Context, userID int64, date string) ([]*models.SkipRecord, error) {
	query := `
		SELECT user_id, item_id, skip_date::text, created_at
		FROM skip_records
		WHERE user_id = $1 AND skip_date = $2::date
		ORDER BY item_id`

	rows, err := r.db.QueryContext(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query skip records: %w", err)
	}
	defer rows.Close()

	var records []*models.SkipRecord
	for rows.Next() {
		rec := &models.SkipRecord{}
		if err := rows.Scan(&rec.UserID, &rec.ItemID, &rec.Date, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skip record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *skipRepository) Upsert(ctx context.Context, record *models.SkipRecord) error {
	query := `
		INSERT INTO skip_records (user_id, item_id, skip_date, created_at)
		VALUES ($1, $2, $3::date, $4)
		ON CONFLICT (user_id, item_id, skip_date) DO NOTHING`

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, err := r.db.ExecContext(ctx, query, record.UserID, record.ItemID, record.Date, record.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert skip record: %w", err)
	}

	return nil
}

func (r *skipRepository) Delete(ctx context.Context, userID int64, itemID, date string) error {
	query := `DELETE FROM skip_records WHERE user_id = $1 AND item_id = $2 AND skip_date = $3::date`

	if _, err := r.db.ExecContext(ctx, query, userID, itemID, date); err != nil {
		return fmt.Errorf("failed to delete skip record: %w", err)
	}

	return nil
}
