package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/digkill/PromptLibrary/internal/config"
	"github.com/digkill/PromptLibrary/internal/models"
)

type PlanService struct {
	cfg  config.Config
	repo PlanStore
}

type CreatePlanInput struct {
	PlanType        string
	Title           string
	Description     string
	Currency        string
	PriceMinorUnits int
	StripePriceID   string
	IsActive        *bool
}

type UpdatePlanInput struct {
	Title           *string
	Description     *string
	Currency        *string
	PriceMinorUnits *int
	StripePriceID   *string
	IsActive        *bool
}

func NewPlanService(cfg config.Config, repo PlanStore) *PlanService {
	return &PlanService{cfg: cfg, repo: repo}
}

// EnsureDefaultPlans seeds the standard and premium tiers from configuration
// when no active plan of that type exists.
func (s *PlanService) EnsureDefaultPlans(ctx context.Context) error {
	defaults := []models.Plan{
		{
			PlanType:        models.PlanStandard,
			Title:           "Standard",
			Description:     "All prompts, articles and statistics. 100 favorites, 50 custom prompts.",
			Currency:        s.cfg.PaymentCurrency,
			PriceMinorUnits: s.cfg.StandardPriceMinorUnits,
			StripePriceID:   s.cfg.StripePriceStandard,
			IsActive:        true,
		},
		{
			PlanType:        models.PlanPremium,
			Title:           "Premium",
			Description:     "Everything in Standard plus folders. 500 favorites, 150 custom prompts.",
			Currency:        s.cfg.PaymentCurrency,
			PriceMinorUnits: s.cfg.PremiumPriceMinorUnits,
			StripePriceID:   s.cfg.StripePricePremium,
			IsActive:        true,
		},
	}
	for _, plan := range defaults {
		existing, err := s.repo.GetActiveByType(ctx, plan.PlanType)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := s.repo.Create(ctx, &plan); err != nil {
			return fmt.Errorf("create default %s plan: %w", plan.PlanType, err)
		}
	}
	return nil
}

func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	return plans, nil
}

// ListActive is the public price list.
func (s *PlanService) ListActive(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Plan, 0, len(plans))
	for _, p := range plans {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func parsePaidPlanType(raw string) (models.PlanType, error) {
	switch t := models.PlanType(strings.ToLower(strings.TrimSpace(raw))); t {
	case models.PlanStandard, models.PlanPremium:
		return t, nil
	default:
		return "", fmt.Errorf("%w: plan type must be standard or premium", ErrInvalidInput)
	}
}

func (s *PlanService) Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	planType, err := parsePaidPlanType(input.PlanType)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Currency == "" {
		input.Currency = s.cfg.PaymentCurrency
	}
	if input.PriceMinorUnits <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	plan := models.Plan{
		PlanType:        planType,
		Title:           input.Title,
		Description:     input.Description,
		Currency:        strings.ToLower(input.Currency),
		PriceMinorUnits: input.PriceMinorUnits,
		StripePriceID:   strings.TrimSpace(input.StripePriceID),
		IsActive:        isActive,
	}
	return s.repo.Create(ctx, &plan)
}

func (s *PlanService) Update(ctx context.Context, id int64, input UpdatePlanInput) (*models.Plan, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if input.Title != nil && *input.Title != "" {
		existing.Title = *input.Title
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Currency != nil && *input.Currency != "" {
		existing.Currency = strings.ToLower(*input.Currency)
	}
	if input.PriceMinorUnits != nil && *input.PriceMinorUnits > 0 {
		existing.PriceMinorUnits = *input.PriceMinorUnits
	}
	if input.StripePriceID != nil {
		existing.StripePriceID = strings.TrimSpace(*input.StripePriceID)
	}
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	return s.repo.Update(ctx, existing)
}

func (s *PlanService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// CheckoutPlan is the active plan of a paid tier that can be bought.
func (s *PlanService) CheckoutPlan(ctx context.Context, rawType string) (*models.Plan, error) {
	planType, err := parsePaidPlanType(rawType)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.GetActiveByType(ctx, planType)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.StripePriceID == "" {
		return nil, fmt.Errorf("%w: %s plan is not available", ErrNotFound, planType)
	}
	return plan, nil
}

// PlanTypeForPrice detects the tier a Stripe price belongs to, falling back
// to the configured price ids.
func (s *PlanService) PlanTypeForPrice(ctx context.Context, priceID string) (models.PlanType, error) {
	if priceID == "" {
		return "", fmt.Errorf("%w: empty price id", ErrNotFound)
	}
	plan, err := s.repo.GetByStripePrice(ctx, priceID)
	if err != nil {
		return "", err
	}
	if plan != nil {
		return plan.PlanType, nil
	}
	switch priceID {
	case s.cfg.StripePricePremium:
		return models.PlanPremium, nil
	case s.cfg.StripePriceStandard:
		return models.PlanStandard, nil
	}
	return "", fmt.Errorf("%w: unknown price %s", ErrNotFound, priceID)
}
