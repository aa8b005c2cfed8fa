package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
)

// Account is the request-scoped view of who is calling and what they may do.
type Account struct {
	User         *models.User
	Subscription *models.Subscription
	Plan         models.PlanType
	Role         entitlement.Role
	Permissions  entitlement.Permissions
}

// GuestAccount is the account of an anonymous caller.
func GuestAccount() Account {
	return Account{
		Plan:        models.PlanFree,
		Role:        entitlement.RoleGuest,
		Permissions: entitlement.ResolvePermissions(entitlement.RoleGuest),
	}
}

func (a Account) IsGuest() bool {
	return a.User == nil
}

func (a Account) UserID() int64 {
	if a.User == nil {
		return 0
	}
	return a.User.ID
}

// UsageOwner is the key segment the usage tracker files history under.
func (a Account) UsageOwner() string {
	return strconv.FormatInt(a.UserID(), 10)
}

type AccountService struct {
	users UserStore
	subs  SubscriptionStore
}

func NewAccountService(users UserStore, subs SubscriptionStore) *AccountService {
	return &AccountService{users: users, subs: subs}
}

// Load resolves the account for userID from current database state. A zero
// id is a guest.
func (s *AccountService) Load(ctx context.Context, userID int64) (Account, error) {
	if userID == 0 {
		return GuestAccount(), nil
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Account{}, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return Account{}, ErrUnauthorized
	}
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		return Account{}, fmt.Errorf("load subscription: %w", err)
	}
	return buildAccount(user, sub), nil
}

func buildAccount(user *models.User, sub *models.Subscription) Account {
	plan := entitlement.EffectivePlan(sub)
	role := entitlement.ResolveRole(&entitlement.Principal{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		Plan:    plan,
	})
	return Account{
		User:         user,
		Subscription: sub,
		Plan:         plan,
		Role:         role,
		Permissions:  entitlement.ResolvePermissions(role),
	}
}

func (s *AccountService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *AccountService) SetAdmin(ctx context.Context, userID int64, isAdmin bool) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if err := s.users.SetAdmin(ctx, userID, isAdmin); err != nil {
		return nil, err
	}
	user.IsAdmin = isAdmin
	return user, nil
}
