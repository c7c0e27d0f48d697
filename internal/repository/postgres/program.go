package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
)

const programColumns = `id, user_id, name, type, start_date, length_weeks, created_at, updated_at`

type programRepository struct {
	db *sql.DB
}

// NewProgramRepository creates a new cycle program repository
func NewProgramRepository(db *sql.DB) repository.ProgramRepository {
	return &programRepository{db: db}
}

func scanProgram(row interface{ Scan(...any) error }) (*models.CycleProgram, error) {
	p := &models.CycleProgram{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Type,
		&p.StartDate,
		&p.LengthWeeks,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *programRepository) Create(ctx context.Context, program *models.CycleProgram) (*models.CycleProgram, error) {
	query := `
		INSERT INTO programs (id, user_id, name, type, start_date, length_weeks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	now := time.Now()
	program.CreatedAt = now
	program.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		program.ID,
		program.UserID,
		program.Name,
		program.Type,
		program.StartDate,
		program.LengthWeeks,
		program.CreatedAt,
		program.UpdatedAt,
	).Scan(&program.CreatedAt, &program.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	return program, nil
}

func (r *programRepository) GetByID(ctx context.Context, userID int64, id string) (*models.CycleProgram, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE user_id = $1 AND id = $2`

	p, err := scanProgram(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("program %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	return p, nil
}

func (r *programRepository) List(ctx context.Context, userID int64) ([]*models.CycleProgram, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	var programs []*models.CycleProgram
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, p)
	}

	return programs, rows.Err()
}

func (r *programRepository) Update(ctx context.Context, program *models.CycleProgram) (*models.CycleProgram, error) {
	query := `
		UPDATE programs
		SET name = $3, type = $4, start_date = $5, length_weeks = $6, updated_at = $7
		WHERE user_id = $1 AND id = $2
		RETURNING updated_at`

	program.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		program.UserID,
		program.ID,
		program.Name,
		program.Type,
		program.StartDate,
		program.LengthWeeks,
		program.UpdatedAt,
	).Scan(&program.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("program %s: %w", program.ID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update program: %w", err)
	}

	return program, nil
}
