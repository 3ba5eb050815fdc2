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

type notificationRepository struct {
	store *Store
}

// NewNotificationRepository returns a bbolt-backed NotificationRepository.
func NewNotificationRepository(store *Store) repository.NotificationRepository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n == nil {
		return nil, domain.ErrInvalidPayload
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()

	err := r.store.db.Update(func(tx *bolt.Tx) error {
		payload, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketNotifications).Put([]byte(n.ID), payload)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) List(ctx context.Context, filter repository.NotificationFilter) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.store.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketNotifications).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var n domain.Notification
			if err := json.Unmarshal(v, &n); err != nil {
				continue
			}
			if n.Recipient != filter.Recipient {
				continue
			}
			if filter.UnreadOnly && n.IsRead {
				continue
			}
			notifications = append(notifications, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	if filter.Offset >= len(notifications) {
		return nil, nil
	}
	notifications = notifications[filter.Offset:]
	if limit := clampLimit(filter.Limit); len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipient string) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketNotifications)
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return domain.ErrNotificationNotFound
		}
		var n domain.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		if n.Recipient != recipient {
			return domain.ErrNotificationNotFound
		}
		if n.IsRead {
			return nil
		}
		n.IsRead = true

		payload, err := json.Marshal(&n)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), payload)
	})
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipient string) (int, error) {
	var count int
	err := r.store.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketNotifications).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var n domain.Notification
			if err := json.Unmarshal(v, &n); err != nil {
				continue
			}
			if n.Recipient == recipient && !n.IsRead {
				count++
			}
		}
		return nil
	})
	return count, err
}
