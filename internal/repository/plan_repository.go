package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digkill/PromptLibrary/internal/models"
)

type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, plan_type, title, COALESCE(description, ''), currency, price_minor_units, COALESCE(stripe_price_id, ''), is_active, created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (*models.Plan, error) {
	var plan models.Plan
	var planType string
	if err := row.Scan(&plan.ID, &planType, &plan.Title, &plan.Description, &plan.Currency, &plan.PriceMinorUnits, &plan.StripePriceID, &plan.IsActive, &plan.CreatedAt, &plan.UpdatedAt); err != nil {
		return nil, err
	}
	plan.PlanType = models.NormalizePlanType(planType, false)
	return &plan, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM pricing_plans ORDER BY price_minor_units ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM pricing_plans WHERE id = ?`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}

// GetByStripePrice looks a plan up by its Stripe price id, active or not, so
// subscriptions on retired prices still resolve to a tier.
func (r *PlanRepository) GetByStripePrice(ctx context.Context, priceID string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM pricing_plans WHERE stripe_price_id = ? ORDER BY is_active DESC, id ASC LIMIT 1`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, priceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan by price: %w", err)
	}
	return plan, nil
}

func (r *PlanRepository) GetActiveByType(ctx context.Context, planType models.PlanType) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM pricing_plans WHERE plan_type = ? AND is_active = 1 ORDER BY id ASC LIMIT 1`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, string(planType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active plan: %w", err)
	}
	return plan, nil
}

func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	const query = `
INSERT INTO pricing_plans (plan_type, title, description, currency, price_minor_units, stripe_price_id, is_active)
VALUES (?, ?, NULLIF(?, ''), ?, ?, NULLIF(?, ''), ?)`
	res, err := r.db.ExecContext(ctx, query, string(plan.PlanType), plan.Title, plan.Description, plan.Currency, plan.PriceMinorUnits, plan.StripePriceID, boolInt(plan.IsActive))
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("plan last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *PlanRepository) Update(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	const query = `
UPDATE pricing_plans
SET plan_type = ?, title = ?, description = NULLIF(?, ''), currency = ?, price_minor_units = ?, stripe_price_id = NULLIF(?, ''), is_active = ?, updated_at = NOW()
WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, string(plan.PlanType), plan.Title, plan.Description, plan.Currency, plan.PriceMinorUnits, plan.StripePriceID, boolInt(plan.IsActive), plan.ID); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return r.GetByID(ctx, plan.ID)
}

func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM pricing_plans WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
