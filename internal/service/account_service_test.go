package service

import (
	"context"
	"errors"
	"testing"

	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
)

func TestAccountLoad(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	subs := newMemSubs()
	svc := NewAccountService(users, subs)

	plain, _ := users.Create(ctx, &models.User{Email: "plain@example.com"})
	paying, _ := users.Create(ctx, &models.User{Email: "paying@example.com"})
	lapsed, _ := users.Create(ctx, &models.User{Email: "lapsed@example.com"})
	admin, _ := users.Create(ctx, &models.User{Email: "admin@example.com", IsAdmin: true})

	_ = subs.Upsert(ctx, &models.Subscription{UserID: paying.ID, PlanType: models.PlanStandard, Status: models.StatusActive})
	_ = subs.Upsert(ctx, &models.Subscription{UserID: lapsed.ID, PlanType: models.PlanPremium, Status: models.StatusPastDue})
	_ = subs.Upsert(ctx, &models.Subscription{UserID: admin.ID, PlanType: models.PlanPremium, Status: models.StatusCanceled})

	cases := []struct {
		name   string
		userID int64
		want   entitlement.Role
	}{
		{"guest", 0, entitlement.RoleGuest},
		{"no subscription", plain.ID, entitlement.RoleFree},
		{"active standard", paying.ID, entitlement.RoleStandard},
		{"past due premium", lapsed.ID, entitlement.RoleFree},
		{"admin flag wins", admin.ID, entitlement.RoleAdmin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			acct, err := svc.Load(ctx, tc.userID)
			if err != nil {
				t.Fatalf("Load error = %v", err)
			}
			if acct.Role != tc.want {
				t.Fatalf("Role = %s, want %s", acct.Role, tc.want)
			}
			if acct.Permissions != entitlement.ResolvePermissions(tc.want) {
				t.Fatalf("Permissions do not match role %s", tc.want)
			}
		})
	}

	if _, err := svc.Load(ctx, 999); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Load unknown user error = %v", err)
	}
}

func TestAccountReflectsPlanChangeImmediately(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	subs := newMemSubs()
	svc := NewAccountService(users, subs)
	u, _ := users.Create(ctx, &models.User{Email: "u@example.com"})

	before, _ := svc.Load(ctx, u.ID)
	_ = subs.Upsert(ctx, &models.Subscription{UserID: u.ID, PlanType: models.PlanPremium, Status: models.StatusActive})
	after, _ := svc.Load(ctx, u.ID)

	if before.Role != entitlement.RoleFree || after.Role != entitlement.RolePremium {
		t.Fatalf("roles = %s then %s, want free then premium", before.Role, after.Role)
	}
}

func TestSetAdmin(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	svc := NewAccountService(users, newMemSubs())
	u, _ := users.Create(ctx, &models.User{Email: "u@example.com"})

	updated, err := svc.SetAdmin(ctx, u.ID, true)
	if err != nil || !updated.IsAdmin {
		t.Fatalf("SetAdmin = %+v, %v", updated, err)
	}
	acct, _ := svc.Load(ctx, u.ID)
	if acct.Role != entitlement.RoleAdmin {
		t.Fatalf("Role after SetAdmin = %s", acct.Role)
	}
	if _, err := svc.SetAdmin(ctx, 404, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetAdmin unknown error = %v", err)
	}

	list, err := svc.ListUsers(ctx, 0, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListUsers = %v, %v", list, err)
	}
}
