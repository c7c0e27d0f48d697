package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) List(ctx context.Context, userID int64) ([]*models.OrderRecord, error) {
	query := `
		SELECT user_id, scope, ordered_ids, updated_at
		FROM item_orders
		WHERE user_id = $1
		ORDER BY scope`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var records []*models.OrderRecord
	for rows.Next() {
		rec := &models.OrderRecord{}
		if err := rows.Scan(&rec.UserID, &rec.Scope, pq.Array(&rec.OrderedIDs), &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *orderRepository) Save(ctx context.Context, record *models.OrderRecord) error {
	query := `
		INSERT INTO item_orders (user_id, scope, ordered_ids, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, scope) DO UPDATE
		SET ordered_ids = EXCLUDED.ordered_ids, updated_at = EXCLUDED.updated_at`

	record.UpdatedAt = time.Now()

	ids := record.OrderedIDs
	if ids == nil {
		ids = []string{}
	}
	if _, err := r.db.ExecContext(ctx, query, record.UserID, record.Scope, pq.Array(ids), record.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save order for %s: %w", record.Scope, err)
	}

	return nil
}
