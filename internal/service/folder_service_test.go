package service

import (
	"context"
	"errors"
	"testing"

	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
)

func TestFolderLifecycle(t *testing.T) {
	ctx := context.Background()
	prompts := newMemPrompts(catalogPrompt("a", "sales", models.PlanFree), catalogPrompt("b", "sales", models.PlanFree))
	svc := NewFolderService(&memFolders{}, prompts)
	acct := accountFor(1, entitlement.RolePremium)

	folder, err := svc.Create(ctx, acct, "  Outreach ")
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if folder.Name != "Outreach" || folder.ID == "" {
		t.Fatalf("Create = %+v", folder)
	}
	if _, err := svc.Create(ctx, acct, "Outreach"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate name error = %v", err)
	}
	if _, err := svc.Create(ctx, accountFor(2, entitlement.RolePremium), "Outreach"); err != nil {
		t.Fatalf("same name for another owner error = %v", err)
	}

	for _, id := range []string{"a", "b", "a"} {
		if folder, err = svc.AddPrompt(ctx, acct, folder.ID, id); err != nil {
			t.Fatalf("AddPrompt(%s) error = %v", id, err)
		}
	}
	if len(folder.PromptIDs) != 2 {
		t.Fatalf("PromptIDs = %v, want [a b]", folder.PromptIDs)
	}
	if _, err := svc.AddPrompt(ctx, acct, folder.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddPrompt missing error = %v", err)
	}

	_ = prompts.Delete(ctx, "b")
	folders, err := svc.List(ctx, acct)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(folders) != 1 || len(folders[0].PromptIDs) != 1 || folders[0].PromptIDs[0] != "a" {
		t.Fatalf("List = %+v, want dangling id dropped", folders)
	}

	folder, err = svc.RemovePrompt(ctx, acct, folder.ID, "a")
	if err != nil || len(folder.PromptIDs) != 1 {
		t.Fatalf("RemovePrompt = %+v, %v", folder, err)
	}

	renamed, err := svc.Rename(ctx, acct, folder.ID, "Outreach")
	if err != nil || renamed.Name != "Outreach" {
		t.Fatalf("Rename to own name = %+v, %v", renamed, err)
	}
	if err := svc.Delete(ctx, acct, folder.ID); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if err := svc.Delete(ctx, acct, folder.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete error = %v", err)
	}
}

func TestFoldersNeedPremium(t *testing.T) {
	ctx := context.Background()
	svc := NewFolderService(&memFolders{}, newMemPrompts())

	if _, err := svc.Create(ctx, accountFor(1, entitlement.RoleStandard), "X"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("standard Create error = %v", err)
	}
	if _, err := svc.List(ctx, GuestAccount()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("guest List error = %v", err)
	}
	if _, err := svc.Create(ctx, accountFor(1, entitlement.RoleAdmin), " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name error = %v", err)
	}
}
