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

type taskRepository struct {
	store *Store
}

// NewTaskRepository returns a bbolt-backed implementation of TaskRepository.
func NewTaskRepository(store *Store) repository.TaskRepository {
	return &taskRepository{store: store}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.TaskInstance, error) {
	var task *domain.TaskInstance
	err := r.store.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTasks).Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		task = &domain.TaskInstance{}
		return json.Unmarshal(raw, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskInstance, error) {
	var tasks []domain.TaskInstance
	err := r.store.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTasks).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var task domain.TaskInstance
			if err := json.Unmarshal(v, &task); err != nil {
				continue
			}
			if matchesTask(task, filter) {
				tasks = append(tasks, task)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].DueDate.Equal(tasks[j].DueDate) {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return paginateTasks(tasks, filter.Offset, clampLimit(filter.Limit)), nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.TaskInstance) (*domain.TaskInstance, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	err := r.store.db.Update(func(tx *bolt.Tx) error {
		return putTask(tx, task, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// BulkCreate writes the whole batch inside a single bbolt transaction, so the
// batch commits or rolls back as one unit.
func (r *taskRepository) BulkCreate(ctx context.Context, tasks []domain.TaskInstance) ([]domain.TaskInstance, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	out := make([]domain.TaskInstance, len(tasks))
	err := r.store.db.Update(func(tx *bolt.Tx) error {
		now := time.Now().UTC()
		for i := range tasks {
			task := tasks[i]
			if err := putTask(tx, &task, now); err != nil {
				return err
			}
			out[i] = task
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.TaskInstance) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		raw := bucket.Get([]byte(task.ID))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var prev domain.TaskInstance
		if err := json.Unmarshal(raw, &prev); err != nil {
			return err
		}
		task.CreatedAt = prev.CreatedAt
		task.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(task.ID), payload)
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func putTask(tx *bolt.Tx, task *domain.TaskInstance, now time.Time) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketTasks).Put([]byte(task.ID), payload)
}

func matchesTask(task domain.TaskInstance, filter repository.TaskFilter) bool {
	if filter.CreatedBy != "" && task.CreatedBy != filter.CreatedBy {
		return false
	}
	if filter.AssignedTo != "" && task.AssignedTo != filter.AssignedTo {
		return false
	}
	if filter.Status != "" && task.Status != filter.Status {
		return false
	}
	if filter.SourceTemplateID != "" && task.SourceTemplateID != filter.SourceTemplateID {
		return false
	}
	if filter.DueBefore != nil && task.DueDate.After(*filter.DueBefore) {
		return false
	}
	return true
}

func paginateTasks(tasks []domain.TaskInstance, offset, limit int) []domain.TaskInstance {
	if offset >= len(tasks) {
		return nil
	}
	tasks = tasks[offset:]
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks
}
