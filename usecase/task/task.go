package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/repository"
	"github.com/homeboard/backend/usecase"
)

// UseCase owns the task status state machine. Every mutation decides which
// notification (if any) to emit, and to whom; notifications are dispatched
// only after the task write is durable and their failure never surfaces.
type UseCase struct {
	tasks    repository.TaskRepository
	notifier usecase.Notifier
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, notifier usecase.Notifier, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		notifier: notifier,
		logger:   logger,
	}
}

// Patch carries the fields of an update request. Nil pointers leave the
// previous value untouched.
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *domain.Priority
	AssignedTo  *string
	Status      *domain.TaskStatus
	DueDate     *time.Time
	Progress    *int
}

func (uc *UseCase) List(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskInstance, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.TaskInstance, error) {
	return uc.tasks.GetByID(ctx, id)
}

// Create persists a new task. The initial status is always pending regardless
// of what the caller supplied. If the task is assigned to someone other than
// the actor, a task_assigned notification is dispatched; self-assignment and
// unassigned tasks stay silent.
func (uc *UseCase) Create(ctx context.Context, task *domain.TaskInstance, actor string) (*domain.TaskInstance, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}

	task.Status = domain.StatusPending
	task.CreatedBy = actor
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	if created.AssignedTo != "" && created.AssignedTo != actor {
		uc.dispatch(ctx, domain.NotifyTaskAssigned, created.AssignedTo, created.ID, created.Title)
	}
	return created, nil
}

// Update loads the previous instance, applies the patch, persists, and emits
// at most one notification per call:
//
//   - first transition to completed by someone other than the creator emits
//     task_completed to the creator;
//   - failing that, an unchanged assignee whose task had some other field
//     modified by someone else gets task_updated.
//
// Completion wins when a single edit would match both, so one edit never
// produces duplicate alerts. A change of assignee itself fires nothing, and
// writes that move a task out of a terminal state are accepted but silent.
func (uc *UseCase) Update(ctx context.Context, id string, patch Patch, actor string) (*domain.TaskInstance, error) {
	if actor == "" {
		return nil, domain.ErrUnauthorized
	}

	prev, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	otherChanged := applyPatch(&next, patch)

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task status")
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, &next); err != nil {
		return nil, err
	}

	// Only status changes away from a terminal state are exempt from
	// notification; other edits to a finished task still follow the rules
	// below.
	if prev.Status.Terminal() && patch.Status != nil && *patch.Status != prev.Status {
		uc.logger.Warn("status change on terminal task accepted without notification",
			zap.String("task_id", id),
			zap.String("from", string(prev.Status)),
			zap.String("to", string(*patch.Status)))
		return &next, nil
	}

	completedNow := patch.Status != nil &&
		*patch.Status == domain.StatusCompleted &&
		prev.Status != domain.StatusCompleted

	switch {
	case completedNow && prev.CreatedBy != actor:
		uc.dispatch(ctx, domain.NotifyTaskCompleted, prev.CreatedBy, next.ID, next.Title)
	case patch.AssignedTo != nil &&
		*patch.AssignedTo == prev.AssignedTo &&
		prev.AssignedTo != "" &&
		prev.AssignedTo != actor &&
		otherChanged:
		uc.dispatch(ctx, domain.NotifyTaskUpdated, prev.AssignedTo, next.ID, next.Title)
	}

	return &next, nil
}

// Delete removes the instance. Deleting an already-deleted task is a no-op:
// not-found is treated as success so the operation stays idempotent. Related
// notifications are left in place as stale references.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Debug("delete of missing task treated as success", zap.String("task_id", id))
			return nil
		}
		return err
	}
	return nil
}

// applyPatch copies patch values onto next and reports whether any field
// other than the assignee changed.
func applyPatch(next *domain.TaskInstance, patch Patch) bool {
	changed := false

	if patch.Title != nil && *patch.Title != next.Title {
		next.Title = *patch.Title
		changed = true
	}
	if patch.Description != nil && *patch.Description != next.Description {
		next.Description = *patch.Description
		changed = true
	}
	if patch.Category != nil && *patch.Category != next.Category {
		next.Category = *patch.Category
		changed = true
	}
	if patch.Priority != nil && *patch.Priority != next.Priority {
		next.Priority = *patch.Priority
		changed = true
	}
	if patch.Status != nil && *patch.Status != next.Status {
		next.Status = *patch.Status
		changed = true
	}
	if patch.DueDate != nil && !patch.DueDate.Equal(next.DueDate) {
		next.DueDate = *patch.DueDate
		changed = true
	}
	if patch.Progress != nil && *patch.Progress != next.Progress {
		next.Progress = *patch.Progress
		changed = true
	}
	if patch.AssignedTo != nil {
		next.AssignedTo = *patch.AssignedTo
	}

	return changed
}

func (uc *UseCase) dispatch(ctx context.Context, typ domain.NotificationType, recipient, taskID, title string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Dispatch(ctx, typ, recipient, taskID, title); err != nil {
		uc.logger.Error("notification dispatch failed",
			zap.String("type", string(typ)),
			zap.String("recipient", recipient),
			zap.String("task_id", taskID),
			zap.Error(err))
	}
}
