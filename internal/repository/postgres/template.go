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

type templateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new schedule template repository
func NewTemplateRepository(db *sql.DB) repository.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *models.ScheduleTemplate) error {
	now := time.Now()
	template.CreatedAt = now
	template.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if template.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE schedule_templates SET is_default = false WHERE user_id = $1 AND is_default`,
				template.UserID,
			); err != nil {
				return fmt.Errorf("failed to clear default template: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_templates (id, user_id, name, is_default, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			template.ID, template.UserID, template.Name, template.IsDefault, template.CreatedAt, template.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}

		for i, e := range template.Entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO template_entries (template_id, position, item_id, start_time, reminder_minutes)
				VALUES ($1, $2, $3, $4, $5)`,
				template.ID, i, e.ItemID, e.StartTime, e.ReminderMinutes,
			)
			if err != nil {
				return fmt.Errorf("failed to create template entry %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *templateRepository) GetByID(ctx context.Context, userID int64, id string) (*models.ScheduleTemplate, error) {
	query := `
		SELECT id, user_id, name, is_default, created_at, updated_at
		FROM schedule_templates
		WHERE user_id = $1 AND id = $2`

	t := &models.ScheduleTemplate{}
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&t.ID, &t.UserID, &t.Name, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	entries, err := r.entries(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Entries = entries[t.ID]

	return t, nil
}

func (r *templateRepository) List(ctx context.Context, userID int64) ([]*models.ScheduleTemplate, error) {
	query := `
		SELECT id, user_id, name, is_default, created_at, updated_at
		FROM schedule_templates
		WHERE user_id = $1
		ORDER BY is_default DESC, name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.ScheduleTemplate
	var ids []string
	for rows.Next() {
		t := &models.ScheduleTemplate{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return templates, nil
	}

	entries, err := r.entries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		t.Entries = entries[t.ID]
	}

	return templates, nil
}

func (r *templateRepository) entries(ctx context.Context, templateIDs []string) (map[string][]models.TemplateEntry, error) {
	query := `
		SELECT template_id, item_id, start_time, reminder_minutes
		FROM template_entries
		WHERE template_id = ANY($1)
		ORDER BY template_id, position`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(templateIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query template entries: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.TemplateEntry, len(templateIDs))
	for rows.Next() {
		var templateID string
		var e models.TemplateEntry
		if err := rows.Scan(&templateID, &e.ItemID, &e.StartTime, &e.ReminderMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan template entry: %w", err)
		}
		out[templateID] = append(out[templateID], e)
	}

	return out, rows.Err()
}

// SetDefault swaps the default in one statement. The exclusion constraint
// on is_default is deferred, so no reader sees zero or two defaults.
func (r *templateRepository) SetDefault(ctx context.Context, userID int64, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if id != "" {
			var exists bool
			err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM schedule_templates WHERE user_id = $1 AND id = $2)`,
				userID, id,
			).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to look up template: %w", err)
			}
			if !exists {
				return fmt.Errorf("template %s: %w", id, repository.ErrNotFound)
			}
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE schedule_templates
			SET is_default = (id = $2), updated_at = $3
			WHERE user_id = $1 AND (is_default OR id = $2)`,
			userID, id, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to set default template: %w", err)
		}
		return nil
	})
}

func (r *templateRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedule_templates WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	return expectRow(result, "template "+id)
}
