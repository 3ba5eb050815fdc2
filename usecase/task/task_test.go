package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/repository"
)

type fakeTaskRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.TaskInstance, error)
	createFn  func(ctx context.Context, task *domain.TaskInstance) (*domain.TaskInstance, error)
	updateFn  func(ctx context.Context, task *domain.TaskInstance) error
	deleteFn  func(ctx context.Context, id string) error
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id string) (*domain.TaskInstance, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskInstance, error) {
	return nil, nil
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *domain.TaskInstance) (*domain.TaskInstance, error) {
	if f.createFn != nil {
		return f.createFn(ctx, task)
	}
	out := *task
	out.ID = "task-1"
	return &out, nil
}

func (f *fakeTaskRepo) BulkCreate(ctx context.Context, tasks []domain.TaskInstance) ([]domain.TaskInstance, error) {
	return tasks, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *domain.TaskInstance) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, task)
	}
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

type dispatched struct {
	typ       domain.NotificationType
	recipient string
	taskID    string
	subject   string
}

type fakeNotifier struct {
	calls []dispatched
	err   error
}

func (f *fakeNotifier) Dispatch(ctx context.Context, typ domain.NotificationType, recipient, relatedTaskID, subject string) error {
	f.calls = append(f.calls, dispatched{typ: typ, recipient: recipient, taskID: relatedTaskID, subject: subject})
	return f.err
}

func strPtr(s string) *string                          { return &s }
func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }

func existing(id string, status domain.TaskStatus, createdBy, assignedTo string) *domain.TaskInstance {
	return &domain.TaskInstance{
		ID:         id,
		Title:      "Take out the trash",
		Status:     status,
		CreatedBy:  createdBy,
		AssignedTo: assignedTo,
		DueDate:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateNotifiesAssignee(t *testing.T) {
	notifier := &fakeNotifier{}
	uc := New(&fakeTaskRepo{}, notifier, nil)

	created, err := uc.Create(context.Background(), &domain.TaskInstance{
		Title:      "Mow the lawn",
		AssignedTo: "bob",
		Status:     domain.StatusInProgress, // callers never choose the initial status
	}, "alice")
	if err != nil {
		t.Fatalf("Create() err=%v, want nil", err)
	}
	if created.Status != domain.StatusPending {
		t.Errorf("created status=%q, want pending", created.Status)
	}
	if created.CreatedBy != "alice" {
		t.Errorf("created by=%q, want alice", created.CreatedBy)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.typ != domain.NotifyTaskAssigned || call.recipient != "bob" {
		t.Errorf("dispatched %+v, want task_assigned to bob", call)
	}
}

func TestCreateSelfAssignmentStaysSilent(t *testing.T) {
	notifier := &fakeNotifier{}
	uc := New(&fakeTaskRepo{}, notifier, nil)

	if _, err := uc.Create(context.Background(), &domain.TaskInstance{
		Title:      "Do the dishes",
		AssignedTo: "alice",
	}, "alice"); err != nil {
		t.Fatalf("Create() err=%v, want nil", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("dispatched %d notifications, want 0", len(notifier.calls))
	}
}

func TestCreateUnassignedStaysSilent(t *testing.T) {
	notifier := &fakeNotifier{}
	uc := New(&fakeTaskRepo{}, notifier, nil)

	if _, err := uc.Create(context.Background(), &domain.TaskInstance{Title: "Tidy up"}, "alice"); err != nil {
		t.Fatalf("Create() err=%v, want nil", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("dispatched %d notifications, want 0", len(notifier.calls))
	}
}

func TestCreateRejectsInvalidTask(t *testing.T) {
	repo := &fakeTaskRepo{
		createFn: func(ctx context.Context, task *domain.TaskInstance) (*domain.TaskInstance, error) {
			t.Fatal("Create reached the repository with an invalid task")
			return nil, nil
		},
	}
	uc := New(repo, &fakeNotifier{}, nil)

	_, err := uc.Create(context.Background(), &domain.TaskInstance{Title: ""}, "alice")
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("Create() err=%v, want INVALID domain error", err)
	}
}

func TestUpdateCompletionNotifiesCreator(t *testing.T) {
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusInProgress, "dave", "erin"), nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	_, err := uc.Update(context.Background(), "task-1", Patch{Status: statusPtr(domain.StatusCompleted)}, "erin")
	if err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.typ != domain.NotifyTaskCompleted || call.recipient != "dave" {
		t.Errorf("dispatched %+v, want task_completed to dave", call)
	}
}

func TestUpdateCompletionPrecedence(t *testing.T) {
	// A single edit that both completes and reassigns produces exactly one
	// notification, the completion one.
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusInProgress, "dave", "erin"), nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	_, err := uc.Update(context.Background(), "task-1", Patch{
		Status:     statusPtr(domain.StatusCompleted),
		AssignedTo: strPtr("bob"),
	}, "carol")
	if err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.typ != domain.NotifyTaskCompleted || call.recipient != "dave" {
		t.Errorf("dispatched %+v, want task_completed to dave", call)
	}
}

func TestUpdateSelfCompletionStaysSilent(t *testing.T) {
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusInProgress, "alice", ""), nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	if _, err := uc.Update(context.Background(), "task-1", Patch{Status: statusPtr(domain.StatusCompleted)}, "alice"); err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("dispatched %d notifications, want 0", len(notifier.calls))
	}
}

func TestUpdateNotifiesUnchangedAssignee(t *testing.T) {
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusPending, "alice", "bob"), nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	_, err := uc.Update(context.Background(), "task-1", Patch{
		AssignedTo: strPtr("bob"),
		Title:      strPtr("Take out the trash and recycling"),
	}, "alice")
	if err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.typ != domain.NotifyTaskUpdated || call.recipient != "bob" {
		t.Errorf("dispatched %+v, want task_updated to bob", call)
	}
}

func TestUpdateAssigneeChangeStaysSilent(t *testing.T) {
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusPending, "alice", "bob"), nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	_, err := uc.Update(context.Background(), "task-1", Patch{
		AssignedTo: strPtr("carol"),
		Title:      strPtr("New title"),
	}, "alice")
	if err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("dispatched %d notifications, want 0", len(notifier.calls))
	}
}

func TestUpdateUnchangedAssigneeWithNoOtherChangeStaysSilent(t *testing.T) {
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusPending, "alice", "bob"), nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	if _, err := uc.Update(context.Background(), "task-1", Patch{AssignedTo: strPtr("bob")}, "alice"); err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("dispatched %d notifications, want 0", len(notifier.calls))
	}
}

func TestUpdateTerminalReversalAcceptedButSilent(t *testing.T) {
	var persisted *domain.TaskInstance
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusCompleted, "dave", "erin"), nil
		},
		updateFn: func(ctx context.Context, task *domain.TaskInstance) error {
			persisted = task
			return nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	updated, err := uc.Update(context.Background(), "task-1", Patch{Status: statusPtr(domain.StatusPending)}, "carol")
	if err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if updated.Status != domain.StatusPending {
		t.Errorf("status=%q, want pending", updated.Status)
	}
	if persisted == nil || persisted.Status != domain.StatusPending {
		t.Error("reversal was not persisted")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("dispatched %d notifications, want 0", len(notifier.calls))
	}
}

func TestUpdateNonStatusEditOnTerminalTaskStillNotifiesAssignee(t *testing.T) {
	// Only status reversals are exempt from notification. A plain field edit
	// on a finished task follows the usual unchanged-assignee rule.
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusCompleted, "alice", "bob"), nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	progress := 100
	_, err := uc.Update(context.Background(), "task-1", Patch{
		AssignedTo: strPtr("bob"),
		Progress:   &progress,
	}, "alice")
	if err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.typ != domain.NotifyTaskUpdated || call.recipient != "bob" {
		t.Errorf("dispatched %+v, want task_updated to bob", call)
	}
}

func TestUpdateCancelledToCompletedStaysSilent(t *testing.T) {
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusCancelled, "dave", "erin"), nil
		},
	}
	notifier := &fakeNotifier{}
	uc := New(repo, notifier, nil)

	if _, err := uc.Update(context.Background(), "task-1", Patch{Status: statusPtr(domain.StatusCompleted)}, "erin"); err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("dispatched %d notifications, want 0", len(notifier.calls))
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusPending, "alice", ""), nil
		},
		updateFn: func(ctx context.Context, task *domain.TaskInstance) error {
			t.Fatal("Update reached the repository with an invalid status")
			return nil
		},
	}
	uc := New(repo, &fakeNotifier{}, nil)

	bogus := domain.TaskStatus("done")
	_, err := uc.Update(context.Background(), "task-1", Patch{Status: &bogus}, "alice")
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("Update() err=%v, want INVALID domain error", err)
	}
}

func TestUpdateDispatchFailureDoesNotSurface(t *testing.T) {
	repo := &fakeTaskRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.TaskInstance, error) {
			return existing(id, domain.StatusInProgress, "dave", "erin"), nil
		},
	}
	notifier := &fakeNotifier{err: errors.New("notification store down")}
	uc := New(repo, notifier, nil)

	updated, err := uc.Update(context.Background(), "task-1", Patch{Status: statusPtr(domain.StatusCompleted)}, "erin")
	if err != nil {
		t.Fatalf("Update() err=%v, want nil (dispatch failures never surface)", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Errorf("status=%q, want completed", updated.Status)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	calls := 0
	repo := &fakeTaskRepo{
		deleteFn: func(ctx context.Context, id string) error {
			calls++
			if calls > 1 {
				return domain.ErrTaskNotFound
			}
			return nil
		},
	}
	uc := New(repo, &fakeNotifier{}, nil)

	if err := uc.Delete(context.Background(), "task-1"); err != nil {
		t.Fatalf("first Delete() err=%v, want nil", err)
	}
	if err := uc.Delete(context.Background(), "task-1"); err != nil {
		t.Fatalf("second Delete() err=%v, want nil", err)
	}
}

func TestDeleteSurfacesStorageErrors(t *testing.T) {
	storageErr := errors.New("connection reset")
	repo := &fakeTaskRepo{
		deleteFn: func(ctx context.Context, id string) error { return storageErr },
	}
	uc := New(repo, &fakeNotifier{}, nil)

	if err := uc.Delete(context.Background(), "task-1"); !errors.Is(err, storageErr) {
		t.Fatalf("Delete() err=%v, want %v", err, storageErr)
	}
}
