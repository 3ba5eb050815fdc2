package template

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/pkg/dates"
	"github.com/homeboard/backend/repository"
	"github.com/homeboard/backend/usecase/recurrence"
)

type fakeTemplateRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error)
	createFn  func(ctx context.Context, tpl *domain.RecurrenceTemplate) (*domain.RecurrenceTemplate, error)
	advanceFn func(ctx context.Context, id string, generated time.Time) error
	advanced  []time.Time
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeTemplateRepo) List(ctx context.Context, filter repository.TemplateFilter) ([]domain.RecurrenceTemplate, error) {
	return nil, nil
}

func (f *fakeTemplateRepo) Create(ctx context.Context, tpl *domain.RecurrenceTemplate) (*domain.RecurrenceTemplate, error) {
	if f.createFn != nil {
		return f.createFn(ctx, tpl)
	}
	out := *tpl
	out.ID = "tpl-1"
	return &out, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, tpl *domain.RecurrenceTemplate) error {
	return nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeTemplateRepo) AdvanceLastGenerated(ctx context.Context, id string, generated time.Time) error {
	f.advanced = append(f.advanced, generated)
	if f.advanceFn != nil {
		return f.advanceFn(ctx, id, generated)
	}
	return nil
}

type fakeBulkRepo struct {
	bulkCreateFn func(ctx context.Context, tasks []domain.TaskInstance) ([]domain.TaskInstance, error)
}

func (f *fakeBulkRepo) GetByID(ctx context.Context, id string) (*domain.TaskInstance, error) {
	return nil, domain.ErrTaskNotFound
}

func (f *fakeBulkRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskInstance, error) {
	return nil, nil
}

func (f *fakeBulkRepo) Create(ctx context.Context, task *domain.TaskInstance) (*domain.TaskInstance, error) {
	return task, nil
}

func (f *fakeBulkRepo) BulkCreate(ctx context.Context, tasks []domain.TaskInstance) ([]domain.TaskInstance, error) {
	if f.bulkCreateFn != nil {
		return f.bulkCreateFn(ctx, tasks)
	}
	return tasks, nil
}

func (f *fakeBulkRepo) Update(ctx context.Context, task *domain.TaskInstance) error { return nil }
func (f *fakeBulkRepo) Delete(ctx context.Context, id string) error                 { return nil }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeTemplate() *domain.RecurrenceTemplate {
	end := date(2024, time.January, 22)
	return &domain.RecurrenceTemplate{
		ID:        "tpl-1",
		Title:     "Weekly cleaning",
		Kind:      domain.RecurWeekly,
		Interval:  1,
		StartDate: date(2024, time.January, 1),
		EndDate:   &end,
		IsActive:  true,
		CreatedBy: "alice",
	}
}

func newExpander() *recurrence.Expander {
	return recurrence.NewExpander(dates.Fixed(date(2024, time.January, 1)), 0)
}

func TestGenerateAdvancesBookkeepingAfterSuccess(t *testing.T) {
	templates := &fakeTemplateRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
			return activeTemplate(), nil
		},
	}
	uc := New(templates, &fakeBulkRepo{}, newExpander(), nil)

	result, err := uc.Generate(context.Background(), "tpl-1", 0)
	if err != nil {
		t.Fatalf("Generate() err=%v, want nil", err)
	}
	if len(result.Created) != 4 {
		t.Fatalf("Generate() created %d instances, want 4", len(result.Created))
	}
	if len(templates.advanced) != 1 {
		t.Fatalf("AdvanceLastGenerated called %d times, want 1", len(templates.advanced))
	}
	if !templates.advanced[0].Equal(date(2024, time.January, 22)) {
		t.Errorf("advanced to %v, want the last due date 2024-01-22", templates.advanced[0])
	}
}

func TestGenerateBulkFailureLeavesBookkeepingUntouched(t *testing.T) {
	templates := &fakeTemplateRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
			return activeTemplate(), nil
		},
	}
	storageErr := errors.New("constraint violation")
	tasks := &fakeBulkRepo{
		bulkCreateFn: func(ctx context.Context, batch []domain.TaskInstance) ([]domain.TaskInstance, error) {
			return nil, storageErr
		},
	}
	uc := New(templates, tasks, newExpander(), nil)

	if _, err := uc.Generate(context.Background(), "tpl-1", 0); !errors.Is(err, storageErr) {
		t.Fatalf("Generate() err=%v, want %v", err, storageErr)
	}
	if len(templates.advanced) != 0 {
		t.Fatalf("AdvanceLastGenerated called %d times after a failed bulk write, want 0", len(templates.advanced))
	}
}

func TestGenerateInactiveTemplateConflicts(t *testing.T) {
	templates := &fakeTemplateRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
			tpl := activeTemplate()
			tpl.IsActive = false
			return tpl, nil
		},
	}
	uc := New(templates, &fakeBulkRepo{}, newExpander(), nil)

	if _, err := uc.Generate(context.Background(), "tpl-1", 0); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("Generate() err=%v, want CONFLICT domain error", err)
	}
}

func TestGenerateUnknownTemplate(t *testing.T) {
	templates := &fakeTemplateRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
			return nil, domain.ErrTemplateNotFound
		},
	}
	uc := New(templates, &fakeBulkRepo{}, newExpander(), nil)

	if _, err := uc.Generate(context.Background(), "missing", 0); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("Generate() err=%v, want NOT_FOUND domain error", err)
	}
}

func TestGenerateEmptyWindowSkipsPersistence(t *testing.T) {
	templates := &fakeTemplateRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
			tpl := activeTemplate()
			past := date(2020, time.January, 22)
			tpl.StartDate = date(2020, time.January, 1)
			tpl.EndDate = &past
			return tpl, nil
		},
	}
	tasks := &fakeBulkRepo{
		bulkCreateFn: func(ctx context.Context, batch []domain.TaskInstance) ([]domain.TaskInstance, error) {
			t.Fatal("BulkCreate called for an empty batch")
			return nil, nil
		},
	}
	uc := New(templates, tasks, newExpander(), nil)

	result, err := uc.Generate(context.Background(), "tpl-1", 0)
	if err != nil {
		t.Fatalf("Generate() err=%v, want nil", err)
	}
	if len(result.Created) != 0 {
		t.Fatalf("Generate() created %d instances, want 0", len(result.Created))
	}
	if len(templates.advanced) != 0 {
		t.Fatal("AdvanceLastGenerated called for an empty batch")
	}
}

func TestGenerateReportsTruncation(t *testing.T) {
	templates := &fakeTemplateRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
			tpl := activeTemplate()
			end := date(2027, time.January, 1)
			tpl.Kind = domain.RecurDaily
			tpl.EndDate = &end
			return tpl, nil
		},
	}
	uc := New(templates, &fakeBulkRepo{}, newExpander(), nil)

	result, err := uc.Generate(context.Background(), "tpl-1", 0)
	if err != nil {
		t.Fatalf("Generate() err=%v, want nil", err)
	}
	if len(result.Created) != 100 {
		t.Fatalf("Generate() created %d instances, want 100", len(result.Created))
	}
	if !result.Truncated {
		t.Error("Truncated=false, want true")
	}
}

func TestCreateGeneratesFirstBatchWhenActive(t *testing.T) {
	templates := &fakeTemplateRepo{}
	templates.getByIDFn = func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
		tpl := activeTemplate()
		tpl.ID = id
		return tpl, nil
	}
	uc := New(templates, &fakeBulkRepo{}, newExpander(), nil)

	created, result, err := uc.Create(context.Background(), activeTemplate(), "alice")
	if err != nil {
		t.Fatalf("Create() err=%v, want nil", err)
	}
	if created.ID == "" {
		t.Error("created template has no id")
	}
	if result == nil || len(result.Created) != 4 {
		t.Fatalf("Create() result=%+v, want 4 generated instances", result)
	}
}

func TestCreateInactiveTemplateSkipsGeneration(t *testing.T) {
	templates := &fakeTemplateRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
			t.Fatal("generation path reached for an inactive template")
			return nil, nil
		},
	}
	uc := New(templates, &fakeBulkRepo{}, newExpander(), nil)

	tpl := activeTemplate()
	tpl.IsActive = false
	created, result, err := uc.Create(context.Background(), tpl, "alice")
	if err != nil {
		t.Fatalf("Create() err=%v, want nil", err)
	}
	if created == nil {
		t.Fatal("Create() returned nil template")
	}
	if result != nil {
		t.Fatalf("Create() result=%+v, want nil for inactive template", result)
	}
}

func TestCreateRejectsInvalidTemplate(t *testing.T) {
	uc := New(&fakeTemplateRepo{}, &fakeBulkRepo{}, newExpander(), nil)

	tpl := activeTemplate()
	tpl.Interval = 0
	if _, _, err := uc.Create(context.Background(), tpl, "alice"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("Create() err=%v, want INVALID domain error", err)
	}
}
