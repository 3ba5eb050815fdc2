package repository

import (
	"context"

	"github.com/homeboard/backend/domain"
)

type NotificationFilter struct {
	Recipient  string
	UnreadOnly bool
	Limit      int
	Offset     int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error)
	// MarkRead flips is_read for the recipient's notification. Unknown ids
	// surface domain.ErrNotificationNotFound.
	MarkRead(ctx context.Context, id, recipient string) error
	CountUnread(ctx context.Context, recipient string) (int, error)
}
