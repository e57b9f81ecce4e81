package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"doctags/internal/domain"
)

type subscriptionService struct {
	subRepo  domain.TagSubscriptionRepository
	userRepo domain.UserRepository
}

// NewSubscriptionService creates a SubscriptionService with the given repositories.
func NewSubscriptionService(subRepo domain.TagSubscriptionRepository, userRepo domain.UserRepository) domain.SubscriptionService {
	return &subscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, tag string) (*domain.TagSubscription, bool, error) {
	tag, err := domain.NormalizeTag(tag)
	if err != nil {
		return nil, false, err
	}

	// Subscribing twice is a no-op; return the existing subscription.
	if existing, err := s.subRepo.GetByUserAndTag(ctx, userID, tag); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get subscription: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, domain.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	sub := domain.NewTagSubscription(userID, user.Email, tag, time.Now())
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, false, fmt.Errorf("create subscription: %w", err)
	}
	return sub, true, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, tag string) error {
	tag, err := domain.NormalizeTag(tag)
	if err != nil {
		return err
	}
	if err := s.subRepo.Delete(ctx, userID, tag); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *subscriptionService) ListByUser(ctx context.Context, userID string) ([]*domain.TagSubscription, error) {
	subs, err := s.subRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}
