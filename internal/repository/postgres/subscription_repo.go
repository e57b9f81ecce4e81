package postgres

import (
	"context"
	"database/sql"
	"errors"

	"doctags/internal/domain"
)

type tagSubscriptionRepository struct {
	DB *sql.DB
}

func NewTagSubscriptionRepository(db *sql.DB) domain.TagSubscriptionRepository {
	return &tagSubscriptionRepository{
		DB: db,
	}
}

func (r *tagSubscriptionRepository) Create(ctx context.Context, sub *domain.TagSubscription) error {
	query := `
		INSERT INTO tag_subscriptions (user_id, email, tag, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, sub.UserID, sub.Email, sub.Tag, sub.CreatedAt).
		Scan(&sub.ID)
}

func (r *tagSubscriptionRepository) GetByUserAndTag(ctx context.Context, userID, tag string) (*domain.TagSubscription, error) {
	query := `
		SELECT id, user_id, email, tag, created_at
		FROM tag_subscriptions
		WHERE user_id = $1 AND tag = $2
	`
	sub := &domain.TagSubscription{}
	err := r.DB.QueryRowContext(ctx, query, userID, tag).
		Scan(&sub.ID, &sub.UserID, &sub.Email, &sub.Tag, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *tagSubscriptionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TagSubscription, error) {
	query := `
		SELECT id, user_id, email, tag, created_at
		FROM tag_subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.TagSubscription
	for rows.Next() {
		sub := &domain.TagSubscription{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Email, &sub.Tag, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*domain.TagSubscription{}
	}
	return subs, nil
}

func (r *tagSubscriptionRepository) ListEmailsByTag(ctx context.Context, tag string) ([]string, error) {
	query := `
		SELECT DISTINCT email
		FROM tag_subscriptions
		WHERE tag = $1
		ORDER BY email
	`
	rows, err := r.DB.QueryContext(ctx, query, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (r *tagSubscriptionRepository) Delete(ctx context.Context, userID, tag string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM tag_subscriptions WHERE user_id = $1 AND tag = $2`, userID, tag)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
