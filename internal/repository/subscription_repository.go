package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digkill/PromptLibrary/internal/models"
)

// SubscriptionRepository keeps the local mirror of Stripe subscription state,
// one row per user.
type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) getOne(ctx context.Context, where string, arg any) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE ` + where + ` LIMIT 1`
	var row subscriptionRow
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(row.scanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	s := subscriptionFromRow(row)
	return &s, nil
}

func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	return r.getOne(ctx, `user_id = ?`, userID)
}

func (r *SubscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	return r.getOne(ctx, `stripe_customer_id = ?`, customerID)
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, s *models.Subscription) error {
	const query = `
INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id, plan_type, status, current_period_start, current_period_end, cancel_at_period_end)
VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    stripe_customer_id = COALESCE(VALUES(stripe_customer_id), stripe_customer_id),
    stripe_subscription_id = VALUES(stripe_subscription_id),
    plan_type = VALUES(plan_type), status = VALUES(status),
    current_period_start = VALUES(current_period_start), current_period_end = VALUES(current_period_end),
    cancel_at_period_end = VALUES(cancel_at_period_end), updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.StripeCustomerID, s.StripeSubscriptionID, string(s.PlanType), string(s.Status),
		nullTime(s.CurrentPeriodStart), nullTime(s.CurrentPeriodEnd), boolInt(s.CancelAtPeriodEnd),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}
