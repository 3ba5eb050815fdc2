package repository

import (
	"context"
	"time"

	"github.com/homeboard/backend/domain"
)

type TemplateFilter struct {
	CreatedBy string
	Active    *bool
	Limit     int
	Offset    int
}

type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*domain.RecurrenceTemplate, error)
	List(ctx context.Context, filter TemplateFilter) ([]domain.RecurrenceTemplate, error)
	Create(ctx context.Context, tpl *domain.RecurrenceTemplate) (*domain.RecurrenceTemplate, error)
	Update(ctx context.Context, tpl *domain.RecurrenceTemplate) error
	Delete(ctx context.Context, id string) error
	// AdvanceLastGenerated records the due date of the newest materialized
	// instance. Callers invoke it only after the batch write succeeded.
	AdvanceLastGenerated(ctx context.Context, id string, generated time.Time) error
}
