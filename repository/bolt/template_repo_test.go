package bolt

import (
	"context"
	"testing"
	"time"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/repository"
)

func seedTemplate(t *testing.T, repo repository.TemplateRepository, createdBy string, active bool) *domain.RecurrenceTemplate {
	t.Helper()
	tpl, err := repo.Create(context.Background(), &domain.RecurrenceTemplate{
		Title:     "Weekly cleaning",
		Kind:      domain.RecurWeekly,
		Interval:  1,
		StartDate: due(2024, time.January, 1),
		IsActive:  active,
		CreatedBy: createdBy,
	})
	if err != nil {
		t.Fatalf("Create() err=%v, want nil", err)
	}
	return tpl
}

func TestTemplateRepoCreateAndGet(t *testing.T) {
	repo := NewTemplateRepository(testStore(t))

	created := seedTemplate(t, repo, "alice", true)
	if created.ID == "" {
		t.Fatal("Create() assigned no id")
	}

	got, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() err=%v, want nil", err)
	}
	if got.Title != "Weekly cleaning" || got.Kind != domain.RecurWeekly {
		t.Errorf("GetByID()=%+v", got)
	}
	if got.LastGeneratedDate != nil {
		t.Error("new template already has a last generated date")
	}
}

func TestTemplateRepoListByActive(t *testing.T) {
	repo := NewTemplateRepository(testStore(t))

	seedTemplate(t, repo, "alice", true)
	seedTemplate(t, repo, "alice", false)
	seedTemplate(t, repo, "bob", true)

	active := true
	got, err := repo.List(context.Background(), repository.TemplateFilter{Active: &active})
	if err != nil {
		t.Fatalf("List() err=%v, want nil", err)
	}
	if len(got) != 2 {
		t.Fatalf("List(active) returned %d templates, want 2", len(got))
	}

	got, err = repo.List(context.Background(), repository.TemplateFilter{CreatedBy: "bob"})
	if err != nil {
		t.Fatalf("List() err=%v, want nil", err)
	}
	if len(got) != 1 {
		t.Fatalf("List(bob) returned %d templates, want 1", len(got))
	}
}

func TestTemplateRepoUpdatePreservesBookkeeping(t *testing.T) {
	repo := NewTemplateRepository(testStore(t))
	ctx := context.Background()

	created := seedTemplate(t, repo, "alice", true)
	generated := due(2024, time.March, 1)
	if err := repo.AdvanceLastGenerated(ctx, created.ID, generated); err != nil {
		t.Fatalf("AdvanceLastGenerated() err=%v, want nil", err)
	}

	created.Title = "Biweekly cleaning"
	created.Interval = 2
	created.LastGeneratedDate = nil // callers cannot reset bookkeeping through Update
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("Update() err=%v, want nil", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() err=%v, want nil", err)
	}
	if got.Title != "Biweekly cleaning" || got.Interval != 2 {
		t.Errorf("GetByID()=%+v after update", got)
	}
	if got.LastGeneratedDate == nil || !got.LastGeneratedDate.Equal(generated) {
		t.Errorf("LastGeneratedDate=%v, want %v", got.LastGeneratedDate, generated)
	}
}

func TestTemplateRepoAdvanceUnknown(t *testing.T) {
	repo := NewTemplateRepository(testStore(t))

	err := repo.AdvanceLastGenerated(context.Background(), "missing", due(2024, time.March, 1))
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("AdvanceLastGenerated() err=%v, want NOT_FOUND domain error", err)
	}
}

func TestTemplateRepoDelete(t *testing.T) {
	repo := NewTemplateRepository(testStore(t))
	ctx := context.Background()

	created := seedTemplate(t, repo, "alice", true)
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() err=%v, want nil", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("GetByID() after delete err=%v, want NOT_FOUND domain error", err)
	}
}
