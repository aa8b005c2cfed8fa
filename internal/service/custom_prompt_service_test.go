package service

import (
	"context"
	"errors"
	"testing"

	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
)

func validInput(title string) PromptInput {
	return PromptInput{
		Title:    title,
		Content:  "Summarize {{text}}",
		Category: "general",
		UseCase:  []string{"summarization"},
		Tags:     []string{" notes ", "notes", ""},
		PlanType: "premium",
	}
}

func TestCustomPromptCreate(t *testing.T) {
	ctx := context.Background()
	prompts := newMemPrompts()
	svc := NewCustomPromptService(prompts)
	acct := accountFor(1, entitlement.RoleStandard)

	p, err := svc.Create(ctx, acct, validInput("Mine"))
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if p.OwnerID == nil || *p.OwnerID != 1 {
		t.Fatalf("OwnerID = %v", p.OwnerID)
	}
	if p.PlanType != models.PlanFree || p.IsPremium {
		t.Fatalf("custom prompt plan = %s, want free", p.PlanType)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "notes" {
		t.Fatalf("Tags = %v, want cleaned [notes]", p.Tags)
	}

	if _, err := svc.Create(ctx, accountFor(2, entitlement.RoleFree), validInput("Nope")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("free Create error = %v", err)
	}
	bad := validInput("Bad")
	bad.Category = "astrology"
	if _, err := svc.Create(ctx, acct, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad category error = %v", err)
	}
}

func TestCustomPromptLimit(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomPromptService(newMemPrompts())
	acct := accountFor(1, entitlement.RoleStandard)
	for i := 0; i < 50; i++ {
		if _, err := svc.Create(ctx, acct, validInput("P")); err != nil {
			t.Fatalf("Create #%d error = %v", i, err)
		}
	}
	if _, err := svc.Create(ctx, acct, validInput("P")); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("51st custom prompt error = %v", err)
	}
}

func TestCustomPromptOwnership(t *testing.T) {
	ctx := context.Background()
	prompts := newMemPrompts(catalogPrompt("catalog", "sales", models.PlanFree))
	svc := NewCustomPromptService(prompts)
	owner := accountFor(1, entitlement.RolePremium)
	other := accountFor(2, entitlement.RolePremium)

	p, err := svc.Create(ctx, owner, validInput("Mine"))
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if _, err := svc.Update(ctx, other, p.ID, validInput("Stolen")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update by other error = %v", err)
	}
	if _, err := svc.Update(ctx, owner, "catalog", validInput("Hijack")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update of catalog prompt error = %v", err)
	}
	updated, err := svc.Update(ctx, owner, p.ID, validInput("Renamed"))
	if err != nil || updated.Title != "Renamed" {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	downgraded := accountFor(1, entitlement.RoleFree)
	if err := svc.Delete(ctx, downgraded, p.ID); err != nil {
		t.Fatalf("Delete after downgrade error = %v", err)
	}
	list, _ := svc.List(ctx, owner)
	if len(list) != 0 {
		t.Fatalf("List after Delete = %v", list)
	}
}
