package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type MailingListService struct {
	subscribers ports.MailingListRepository
	logger      zerolog.Logger
}

func NewMailingListService(subscribers ports.MailingListRepository, logger zerolog.Logger) *MailingListService {
	return &MailingListService{subscribers: subscribers, logger: logger}
}

func (s *MailingListService) Subscribe(ctx context.Context, email, affiliate string) (*domain.MailingListSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.BadRequest("email is required")
	}

	sub := &domain.MailingListSubscriber{
		Email:     email,
		Affiliate: strings.TrimSpace(affiliate),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info().Str("affiliate", sub.Affiliate).Msg("mailing list subscriber added")
	return sub, nil
}

func (s *MailingListService) FindSubscribers(ctx context.Context) ([]*domain.MailingListSubscriber, error) {
	return s.subscribers.FindAll(ctx)
}
