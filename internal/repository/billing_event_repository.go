package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/digkill/PromptLibrary/internal/models"
)

// BillingEventRepository is the webhook delivery journal. The unique
// stripe_event_id makes redeliveries detectable.
type BillingEventRepository struct {
	db *sql.DB
}

func NewBillingEventRepository(db *sql.DB) *BillingEventRepository {
	return &BillingEventRepository{db: db}
}

// Record stores the event and reports false when it was already recorded.
func (r *BillingEventRepository) Record(ctx context.Context, ev *models.BillingEvent) (bool, error) {
	const query = `
INSERT IGNORE INTO billing_events (stripe_event_id, event_type, customer_id, raw_payload)
VALUES (?, ?, NULLIF(?, ''), ?)`
	res, err := r.db.ExecContext(ctx, query, ev.StripeEventID, ev.Type, ev.CustomerID, ev.RawPayload)
	if err != nil {
		return false, fmt.Errorf("insert billing event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("billing event rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	if id, err := res.LastInsertId(); err == nil {
		ev.ID = id
	}
	return true, nil
}

// Forget removes an event so that a failed delivery can be retried by Stripe.
func (r *BillingEventRepository) Forget(ctx context.Context, stripeEventID string) error {
	const query = `DELETE FROM billing_events WHERE stripe_event_id = ?`
	if _, err := r.db.ExecContext(ctx, query, stripeEventID); err != nil {
		return fmt.Errorf("delete billing event: %w", err)
	}
	return nil
}
