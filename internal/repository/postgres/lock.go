package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
)

type lockRepository struct {
	db *sql.DB
}

// NewLockRepository creates a new order lock repository
func NewLockRepository(db *sql.DB) repository.LockRepository {
	return &lockRepository{db: db}
}

func (r *lockRepository) Get(ctx context.Context, userID int64) (*models.OrderLock, error) {
	query := `
		SELECT user_id, kind, expires_at, weekdays, created_at
		FROM order_locks
		WHERE user_id = $1`

	l := &models.OrderLock{}
	var weekdays []int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&l.UserID,
		&l.Kind,
		&l.ExpiresAt,
		pq.Array(&weekdays),
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order lock: %w", err)
	}
	l.Weekdays = toInts(weekdays)

	return l, nil
}

func (r *lockRepository) Save(ctx context.Context, lock *models.OrderLock) error {
	query := `
		INSERT INTO order_locks (user_id, kind, expires_at, weekdays, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET kind = EXCLUDED.kind, expires_at = EXCLUDED.expires_at,
			weekdays = EXCLUDED.weekdays, created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query,
		lock.UserID,
		lock.Kind,
		lock.ExpiresAt,
		pq.Array(toInt64s(lock.Weekdays)),
		lock.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save order lock: %w", err)
	}

	return nil
}

func (r *lockRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_locks WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete order lock: %w", err)
	}
	return nil
}
