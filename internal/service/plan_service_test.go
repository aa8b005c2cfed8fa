package service

import (
	"context"
	"errors"
	"testing"

	"github.com/digkill/PromptLibrary/internal/config"
	"github.com/digkill/PromptLibrary/internal/models"
)

func testConfig() config.Config {
	return config.Config{
		FrontendURL:             "https://prompts.example/",
		PaymentCurrency:         "usd",
		StripePriceStandard:     "price_std",
		StripePricePremium:      "price_pro",
		StandardPriceMinorUnits: 900,
		PremiumPriceMinorUnits:  1900,
	}
}

func TestEnsureDefaultPlansIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := &memPlans{}
	svc := NewPlanService(testConfig(), repo)

	for i := 0; i < 2; i++ {
		if err := svc.EnsureDefaultPlans(ctx); err != nil {
			t.Fatalf("EnsureDefaultPlans error = %v", err)
		}
	}
	if len(repo.items) != 2 {
		t.Fatalf("plans = %d, want 2", len(repo.items))
	}
	plan, err := svc.CheckoutPlan(ctx, " Premium ")
	if err != nil {
		t.Fatalf("CheckoutPlan error = %v", err)
	}
	if plan.StripePriceID != "price_pro" || plan.PriceMinorUnits != 1900 {
		t.Fatalf("premium plan = %+v", plan)
	}
	if _, err := svc.CheckoutPlan(ctx, "free"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("CheckoutPlan(free) error = %v", err)
	}
}

func TestPlanTypeForPrice(t *testing.T) {
	ctx := context.Background()
	repo := &memPlans{}
	svc := NewPlanService(testConfig(), repo)
	_, _ = repo.Create(ctx, &models.Plan{PlanType: models.PlanPremium, StripePriceID: "price_promo", IsActive: false})

	cases := []struct {
		price string
		want  models.PlanType
	}{
		{"price_promo", models.PlanPremium},
		{"price_std", models.PlanStandard},
		{"price_pro", models.PlanPremium},
	}
	for _, tc := range cases {
		got, err := svc.PlanTypeForPrice(ctx, tc.price)
		if err != nil || got != tc.want {
			t.Errorf("PlanTypeForPrice(%s) = %s, %v; want %s", tc.price, got, err, tc.want)
		}
	}
	if _, err := svc.PlanTypeForPrice(ctx, "price_unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown price error = %v", err)
	}
}

func TestPlanAdminValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewPlanService(testConfig(), &memPlans{})

	if _, err := svc.Create(ctx, CreatePlanInput{PlanType: "gold", Title: "Gold", PriceMinorUnits: 100}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Create with bad type error = %v", err)
	}
	inactive := false
	plan, err := svc.Create(ctx, CreatePlanInput{PlanType: "standard", Title: "Std", PriceMinorUnits: 500, IsActive: &inactive})
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if plan.Currency != "usd" || plan.IsActive {
		t.Fatalf("created plan = %+v", plan)
	}
	active, _ := svc.ListActive(ctx)
	if len(active) != 0 {
		t.Fatalf("ListActive = %+v, want none", active)
	}

	title := "Standard monthly"
	updated, err := svc.Update(ctx, plan.ID, UpdatePlanInput{Title: &title})
	if err != nil || updated.Title != title {
		t.Fatalf("Update = %+v, %v", updated, err)
	}
	if err := svc.Delete(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete missing error = %v", err)
	}
}
