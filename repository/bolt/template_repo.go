package bolt

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/repository"
)

type templateRepository struct {
	store *Store
}

// NewTemplateRepository returns a bbolt-backed TemplateRepository.
func NewTemplateRepository(store *Store) repository.TemplateRepository {
	return &templateRepository{store: store}
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.RecurrenceTemplate, error) {
	var tpl *domain.RecurrenceTemplate
	err := r.store.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTemplates).Get([]byte(id))
		if raw == nil {
			return domain.ErrTemplateNotFound
		}
		tpl = &domain.RecurrenceTemplate{}
		return json.Unmarshal(raw, tpl)
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (r *templateRepository) List(ctx context.Context, filter repository.TemplateFilter) ([]domain.RecurrenceTemplate, error) {
	var templates []domain.RecurrenceTemplate
	err := r.store.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTemplates).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var tpl domain.RecurrenceTemplate
			if err := json.Unmarshal(v, &tpl); err != nil {
				continue
			}
			if filter.CreatedBy != "" && tpl.CreatedBy != filter.CreatedBy {
				continue
			}
			if filter.Active != nil && tpl.IsActive != *filter.Active {
				continue
			}
			templates = append(templates, tpl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].CreatedAt.After(templates[j].CreatedAt)
	})

	if filter.Offset >= len(templates) {
		return nil, nil
	}
	templates = templates[filter.Offset:]
	if limit := clampLimit(filter.Limit); len(templates) > limit {
		templates = templates[:limit]
	}
	return templates, nil
}

func (r *templateRepository) Create(ctx context.Context, tpl *domain.RecurrenceTemplate) (*domain.RecurrenceTemplate, error) {
	if tpl == nil {
		return nil, domain.ErrInvalidPayload
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	err := r.store.db.Update(func(tx *bolt.Tx) error {
		payload, err := json.Marshal(tpl)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketTemplates).Put([]byte(tpl.ID), payload)
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (r *templateRepository) Update(ctx context.Context, tpl *domain.RecurrenceTemplate) error {
	if tpl == nil {
		return domain.ErrInvalidPayload
	}
	return r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)
		raw := bucket.Get([]byte(tpl.ID))
		if raw == nil {
			return domain.ErrTemplateNotFound
		}
		var prev domain.RecurrenceTemplate
		if err := json.Unmarshal(raw, &prev); err != nil {
			return err
		}
		tpl.CreatedAt = prev.CreatedAt
		tpl.LastGeneratedDate = prev.LastGeneratedDate
		tpl.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(tpl)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(tpl.ID), payload)
	})
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrTemplateNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func (r *templateRepository) AdvanceLastGenerated(ctx context.Context, id string, generated time.Time) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return domain.ErrTemplateNotFound
		}
		var tpl domain.RecurrenceTemplate
		if err := json.Unmarshal(raw, &tpl); err != nil {
			return err
		}
		tpl.LastGeneratedDate = &generated
		tpl.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(&tpl)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), payload)
	})
}
