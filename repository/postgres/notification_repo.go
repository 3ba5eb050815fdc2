package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/repository"
)

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a Postgres-backed NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n == nil {
		return nil, domain.ErrInvalidPayload
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO notifications (id, title, message, type, recipient, is_read, related_task_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		n.ID,
		n.Title,
		n.Message,
		string(n.Type),
		n.Recipient,
		n.IsRead,
		n.RelatedTaskID,
	).Scan(&n.CreatedAt); err != nil {
		return nil, err
	}

	return n, nil
}

func (r *notificationRepository) List(ctx context.Context, filter repository.NotificationFilter) ([]domain.Notification, error) {
	const query = `
	SELECT id, title, message, type, recipient, is_read, related_task_id, created_at
	FROM notifications
	WHERE recipient = $1
	  AND (NOT $2 OR is_read = FALSE)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.Recipient, filter.UnreadOnly, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipient string) error {
	const query = `
	UPDATE notifications
	SET is_read = TRUE
	WHERE id = $1 AND recipient = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, recipient)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipient string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND is_read = FALSE`
	var count int
	if err := r.pool.QueryRow(ctx, query, recipient).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanNotification(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Notification, error) {
	var n domain.Notification
	if err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Message,
		&n.Type,
		&n.Recipient,
		&n.IsRead,
		&n.RelatedTaskID,
		&n.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}
