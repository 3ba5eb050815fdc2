package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/repository"
	"github.com/homeboard/backend/usecase"
)

// UnreadCounter abstracts the Redis unread-count cache. A nil counter
// disables caching without changing behavior.
type UnreadCounter interface {
	Get(ctx context.Context, recipient string) (int, bool, error)
	Set(ctx context.Context, recipient string, count int) error
	Invalidate(ctx context.Context, recipient string) error
}

// Service is the thin fire-and-forget writer of notification records, plus
// the read surface (list, unread count, mark read). It holds no retry or
// backoff logic.
type Service struct {
	repo    repository.NotificationRepository
	counter UnreadCounter
	logger  *zap.Logger
}

func New(repo repository.NotificationRepository, counter UnreadCounter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		counter: counter,
		logger:  logger,
	}
}

var _ usecase.Notifier = (*Service)(nil)

// Dispatch renders the static template for typ and persists one notification
// record for the recipient.
func (s *Service) Dispatch(ctx context.Context, typ domain.NotificationType, recipient, relatedTaskID, subject string) error {
	n, err := domain.BuildNotification(typ, recipient, relatedTaskID, subject)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.invalidate(ctx, recipient)
	return nil
}

func (s *Service) List(ctx context.Context, filter repository.NotificationFilter) ([]domain.Notification, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) MarkRead(ctx context.Context, id, recipient string) error {
	if err := s.repo.MarkRead(ctx, id, recipient); err != nil {
		return err
	}
	s.invalidate(ctx, recipient)
	return nil
}

// UnreadCount serves from the cache when possible and falls back to the
// repository, repopulating the cache best-effort.
func (s *Service) UnreadCount(ctx context.Context, recipient string) (int, error) {
	if s.counter != nil {
		count, ok, err := s.counter.Get(ctx, recipient)
		if err != nil {
			s.logger.Warn("unread cache read failed", zap.String("recipient", recipient), zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, recipient)
	if err != nil {
		return 0, err
	}
	if s.counter != nil {
		if err := s.counter.Set(ctx, recipient, count); err != nil {
			s.logger.Warn("unread cache write failed", zap.String("recipient", recipient), zap.Error(err))
		}
	}
	return count, nil
}

func (s *Service) invalidate(ctx context.Context, recipient string) {
	if s.counter == nil {
		return
	}
	if err := s.counter.Invalidate(ctx, recipient); err != nil {
		s.logger.Warn("unread cache invalidation failed", zap.String("recipient", recipient), zap.Error(err))
	}
}
