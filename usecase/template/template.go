package template

import (
	"context"

	"go.uber.org/zap"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/repository"
	"github.com/homeboard/backend/usecase/recurrence"
)

// UseCase manages recurrence templates and their materialization into task
// batches.
type UseCase struct {
	templates repository.TemplateRepository
	tasks     repository.TaskRepository
	expander  *recurrence.Expander
	logger    *zap.Logger
}

func New(templates repository.TemplateRepository, tasks repository.TaskRepository, expander *recurrence.Expander, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		templates: templates,
		tasks:     tasks,
		expander:  expander,
		logger:    logger,
	}
}

// GenerateResult reports one materialization run.
type GenerateResult struct {
	Created   []domain.TaskInstance
	Truncated bool
}

// Create validates and persists a template, then materializes its first batch
// when it is active. A failed batch write surfaces the error; the template
// itself stays persisted and its bookkeeping untouched, so the user can retry
// generation.
func (uc *UseCase) Create(ctx context.Context, tpl *domain.RecurrenceTemplate, actor string) (*domain.RecurrenceTemplate, *GenerateResult, error) {
	if tpl == nil {
		return nil, nil, domain.ErrInvalidPayload
	}
	if actor == "" {
		return nil, nil, domain.ErrUnauthorized
	}
	tpl.CreatedBy = actor
	if err := tpl.Validate(); err != nil {
		return nil, nil, err
	}

	created, err := uc.templates.Create(ctx, tpl)
	if err != nil {
		return nil, nil, err
	}
	if !created.IsActive {
		return created, nil, nil
	}

	result, err := uc.Generate(ctx, created.ID, 0)
	if err != nil {
		return created, nil, err
	}
	return created, result, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
	return uc.templates.GetByID(ctx, id)
}

func (uc *UseCase) List(ctx context.Context, filter repository.TemplateFilter) ([]domain.RecurrenceTemplate, error) {
	return uc.templates.List(ctx, filter)
}

func (uc *UseCase) Update(ctx context.Context, tpl *domain.RecurrenceTemplate) (*domain.RecurrenceTemplate, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if err := uc.templates.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Delete removes the template only. Already-materialized instances are
// independent once created and keep their (now dangling) back-reference.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.templates.Delete(ctx, id)
}

// Generate expands the template and persists the batch through one atomic
// bulk-create. The template's last_generated_date advances only after that
// write succeeds; any failure leaves the bookkeeping untouched and bubbles
// the storage error up unchanged.
func (uc *UseCase) Generate(ctx context.Context, id string, horizon int) (*GenerateResult, error) {
	tpl, err := uc.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tpl.IsActive {
		return nil, domain.NewError(domain.ErrCodeConflict, "template is inactive")
	}

	result, err := uc.expander.Expand(tpl, horizon)
	if err != nil {
		return nil, err
	}
	if len(result.Tasks) == 0 {
		return &GenerateResult{Truncated: result.Truncated}, nil
	}

	created, err := uc.tasks.BulkCreate(ctx, result.Tasks)
	if err != nil {
		return nil, err
	}

	last := created[len(created)-1].DueDate
	if err := uc.templates.AdvanceLastGenerated(ctx, id, last); err != nil {
		// Bookkeeping is advisory; the batch is already committed.
		uc.logger.Warn("failed to advance last generated date",
			zap.String("template_id", id),
			zap.Error(err))
	}

	uc.logger.Info("materialized recurrence batch",
		zap.String("template_id", id),
		zap.Int("instances", len(created)),
		zap.Bool("truncated", result.Truncated))

	return &GenerateResult{Created: created, Truncated: result.Truncated}, nil
}
