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

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, title, description, category, priority, assigned_to, status, due_date, progress, created_by, source_template_id, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.TaskInstance, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskInstance, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR created_by = $1)
	  AND ($2 = '' OR assigned_to = $2)
	  AND ($3 = '' OR status = $3)
	  AND ($4 = '' OR source_template_id = $4)
	  AND ($5::date IS NULL OR due_date <= $5)
	ORDER BY due_date ASC, created_at DESC
	LIMIT $6 OFFSET $7
	`
	var dueBefore interface{}
	if filter.DueBefore != nil {
		dueBefore = *filter.DueBefore
	}
	rows, err := r.pool.Query(ctx, query,
		filter.CreatedBy,
		filter.AssignedTo,
		string(filter.Status),
		filter.SourceTemplateID,
		dueBefore,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.TaskInstance
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.TaskInstance) (*domain.TaskInstance, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, category, priority, assigned_to, status, due_date, progress, created_by, source_template_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		string(task.Priority),
		task.AssignedTo,
		string(task.Status),
		task.DueDate,
		task.Progress,
		task.CreatedBy,
		task.SourceTemplateID,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

// BulkCreate inserts the whole batch inside one transaction so a failure
// leaves nothing behind.
func (r *taskRepository) BulkCreate(ctx context.Context, tasks []domain.TaskInstance) ([]domain.TaskInstance, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `
	INSERT INTO tasks (id, title, description, category, priority, assigned_to, status, due_date, progress, created_by, source_template_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at
	`

	out := make([]domain.TaskInstance, len(tasks))
	for i := range tasks {
		task := tasks[i]
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if err := tx.QueryRow(ctx, query,
			task.ID,
			task.Title,
			task.Description,
			task.Category,
			string(task.Priority),
			task.AssignedTo,
			string(task.Status),
			task.DueDate,
			task.Progress,
			task.CreatedBy,
			task.SourceTemplateID,
		).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		out[i] = task
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.TaskInstance) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		category = $4,
		priority = $5,
		assigned_to = $6,
		status = $7,
		due_date = $8,
		progress = $9,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		string(task.Priority),
		task.AssignedTo,
		string(task.Status),
		task.DueDate,
		task.Progress,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.TaskInstance, error) {
	var task domain.TaskInstance
	var due time.Time

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Priority,
		&task.AssignedTo,
		&task.Status,
		&due,
		&task.Progress,
		&task.CreatedBy,
		&task.SourceTemplateID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueDate = due
	return &task, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
