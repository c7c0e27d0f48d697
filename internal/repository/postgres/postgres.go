// Package postgres implements the repositories on PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/dayplan/internal/repository"
)

// NewStore wires every repository onto db.
func NewStore(db *sql.DB) repository.Store {
	return repository.Store{
		Users:     NewUserRepository(db),
		Items:     NewItemRepository(db),
		Programs:  NewProgramRepository(db),
		Orders:    NewOrderRepository(db),
		Locks:     NewLockRepository(db),
		Skips:     NewSkipRepository(db),
		Templates: NewTemplateRepository(db),
		Days:      NewDayScheduleRepository(db),
	}
}

func expectRow(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	return nil
}

// withTx runs fn in a transaction and commits only if fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func toInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func toInts(in []int64) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
