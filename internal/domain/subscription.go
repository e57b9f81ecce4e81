package domain

import (
	"context"
	"time"
)

// TagSubscription subscribes a user to a tag: whenever that tag is added to a
// document, the subscriber is notified by email. The email address is
// denormalized onto the subscription so notification fan-out is a single read.
// swagger:model TagSubscription
type TagSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTagSubscription returns a new TagSubscription. ID is typically set by the
// repository on create.
func NewTagSubscription(userID, email, tag string, createdAt time.Time) *TagSubscription {
	return &TagSubscription{
		UserID:    userID,
		Email:     email,
		Tag:       tag,
		CreatedAt: createdAt,
	}
}

// TagSubscriptionRepository defines the interface for tag subscription storage.
type TagSubscriptionRepository interface {
	Create(ctx context.Context, sub *TagSubscription) error
	GetByUserAndTag(ctx context.Context, userID, tag string) (*TagSubscription, error)
	ListByUserID(ctx context.Context, userID string) ([]*TagSubscription, error)
	// ListEmailsByTag returns the distinct subscriber emails for a tag.
	ListEmailsByTag(ctx context.Context, tag string) ([]string, error)
	// Delete removes the subscription for (userID, tag); ErrNotFound when none exists.
	Delete(ctx context.Context, userID, tag string) error
}

// SubscriptionService defines the business logic for tag subscriptions.
type SubscriptionService interface {
	// Subscribe is idempotent: created reports whether a new subscription was made.
	Subscribe(ctx context.Context, userID, tag string) (sub *TagSubscription, created bool, err error)
	Unsubscribe(ctx context.Context, userID, tag string) error
	ListByUser(ctx context.Context, userID string) ([]*TagSubscription, error)
}
