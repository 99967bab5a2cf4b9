package ports

import (
	"context"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

type MailingListRepository interface {
	Create(ctx context.Context, s *domain.MailingListSubscriber) error
	FindAll(ctx context.Context) ([]*domain.MailingListSubscriber, error)
}

type MailingListService interface {
	Subscribe(ctx context.Context, email, affiliate string) (*domain.MailingListSubscriber, error)
	FindSubscribers(ctx context.Context) ([]*domain.MailingListSubscriber, error)
}
