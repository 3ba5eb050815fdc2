package repository

import (
	"context"
	"time"

	"github.com/homeboard/backend/domain"
)

type TaskFilter struct {
	CreatedBy        string
	AssignedTo       string
	Status           domain.TaskStatus
	SourceTemplateID string
	DueBefore        *time.Time
	Limit            int
	Offset           int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TaskInstance, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.TaskInstance, error)
	Create(ctx context.Context, task *domain.TaskInstance) (*domain.TaskInstance, error)
	// BulkCreate persists the batch atomically: either every task is stored
	// or none are.
	BulkCreate(ctx context.Context, tasks []domain.TaskInstance) ([]domain.TaskInstance, error)
	Update(ctx context.Context, task *domain.TaskInstance) error
	Delete(ctx context.Context, id string) error
}
