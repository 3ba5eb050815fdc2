package usecase

import (
	"context"

	"github.com/homeboard/backend/domain"
)

// Notifier abstracts the notification dispatcher so use cases stay decoupled
// from how records are built and stored. Dispatch failures are the caller's
// to log and swallow: a notification must never undo the mutation it
// accompanies.
type Notifier interface {
	Dispatch(ctx context.Context, typ domain.NotificationType, recipient, relatedTaskID, subject string) error
}
