package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/repository"
)

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository returns a Postgres-backed TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) repository.TemplateRepository {
	return &templateRepository{pool: pool}
}

const templateColumns = `id, title, description, category, priority, assigned_to, recurrence_kind, recurrence_interval, start_date, end_date, is_active, last_generated_date, created_by, created_at, updated_at`

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
	const query = `
	SELECT ` + templateColumns + `
	FROM recurrence_templates
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTemplate(row)
}

func (r *templateRepository) List(ctx context.Context, filter repository.TemplateFilter) ([]domain.RecurrenceTemplate, error) {
	const query = `
	SELECT ` + templateColumns + `
	FROM recurrence_templates
	WHERE ($1 = '' OR created_by = $1)
	  AND ($2::boolean IS NULL OR is_active = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	var active interface{}
	if filter.Active != nil {
		active = *filter.Active
	}
	rows, err := r.pool.Query(ctx, query, filter.CreatedBy, active, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []domain.RecurrenceTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	return templates, rows.Err()
}

func (r *templateRepository) Create(ctx context.Context, tpl *domain.RecurrenceTemplate) (*domain.RecurrenceTemplate, error) {
	if tpl == nil {
		return nil, domain.ErrInvalidPayload
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO recurrence_templates (id, title, description, category, priority, assigned_to, recurrence_kind, recurrence_interval, start_date, end_date, is_active, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING created_at, updated_at
	`
	var end interface{}
	if tpl.EndDate != nil {
		end = *tpl.EndDate
	}

	if err := r.pool.QueryRow(ctx, query,
		tpl.ID,
		tpl.Title,
		tpl.Description,
		tpl.Category,
		string(tpl.Priority),
		tpl.AssignedTo,
		string(tpl.Kind),
		tpl.Interval,
		tpl.StartDate,
		end,
		tpl.IsActive,
		tpl.CreatedBy,
	).Scan(&tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return nil, err
	}

	return tpl, nil
}

func (r *templateRepository) Update(ctx context.Context, tpl *domain.RecurrenceTemplate) error {
	if tpl == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE recurrence_templates
	SET title = $2,
		description = $3,
		category = $4,
		priority = $5,
		assigned_to = $6,
		recurrence_kind = $7,
		recurrence_interval = $8,
		start_date = $9,
		end_date = $10,
		is_active = $11,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	var end interface{}
	if tpl.EndDate != nil {
		end = *tpl.EndDate
	}

	if err := r.pool.QueryRow(ctx, query,
		tpl.ID,
		tpl.Title,
		tpl.Description,
		tpl.Category,
		string(tpl.Priority),
		tpl.AssignedTo,
		string(tpl.Kind),
		tpl.Interval,
		tpl.StartDate,
		end,
		tpl.IsActive,
	).Scan(&tpl.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTemplateNotFound
		}
		return err
	}

	return nil
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	// Materialized instances keep only a weak back-reference, so deleting a
	// template never cascades into the tasks table.
	const query = `DELETE FROM recurrence_templates WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepository) AdvanceLastGenerated(ctx context.Context, id string, generated time.Time) error {
	const query = `
	UPDATE recurrence_templates
	SET last_generated_date = $2,
		updated_at = NOW()
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, generated)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func scanTemplate(row interface {
	Scan(dest ...interface{}) error
}) (*domain.RecurrenceTemplate, error) {
	var tpl domain.RecurrenceTemplate
	var (
		end           *time.Time
		lastGenerated *time.Time
	)

	if err := row.Scan(
		&tpl.ID,
		&tpl.Title,
		&tpl.Description,
		&tpl.Category,
		&tpl.Priority,
		&tpl.AssignedTo,
		&tpl.Kind,
		&tpl.Interval,
		&tpl.StartDate,
		&end,
		&tpl.IsActive,
		&lastGenerated,
		&tpl.CreatedBy,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}

	tpl.EndDate = end
	tpl.LastGeneratedDate = lastGenerated
	return &tpl, nil
}
