// Package entitlement maps users to roles and roles to feature permissions.
//
// Everything here is pure: callers resolve again on every request so a plan
// change is visible immediately.
package entitlement

import (
	"encoding/json"
	"strconv"

	"github.com/digkill/PromptLibrary/internal/models"
)

type Role string

const (
	RoleGuest    Role = "guest"
	RoleFree     Role = "free"
	RoleStandard Role = "standard"
	RolePremium  Role = "premium"
	RoleAdmin    Role = "admin"
)

// Limit is a numeric cap where Unlimited encodes "no cap" (null on the wire).
type Limit int

const Unlimited Limit = -1

// Allows reports whether holding n items stays within the limit.
func (l Limit) Allows(n int) bool {
	if l == Unlimited {
		return true
	}
	return n <= int(l)
}

// Covers reports whether l is at least as generous as other.
func (l Limit) Covers(other Limit) bool {
	if l == Unlimited {
		return true
	}
	if other == Unlimited {
		return false
	}
	return l >= other
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if l == Unlimited {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(l))), nil
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = Unlimited
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*l = Limit(n)
	return nil
}

type Permissions struct {
	CanViewAllPrompts      bool  `json:"canViewAllPrompts"`
	CanCopyPrompts         bool  `json:"canCopyPrompts"`
	CanViewArticles        bool  `json:"canViewArticles"`
	CanViewStatistics      bool  `json:"canViewStatistics"`
	CanCreateCustomPrompts bool  `json:"canCreateCustomPrompts"`
	CanSaveFavorites       bool  `json:"canSaveFavorites"`
	CanManageFolders       bool  `json:"canManageFolders"`
	MaxVisiblePrompts      Limit `json:"maxVisiblePrompts"`
	MaxFavorites           Limit `json:"maxFavorites"`
	MaxCustomPrompts       Limit `json:"maxCustomPrompts"`
	IsAdmin                bool  `json:"isAdmin"`
}

// Principal is what the resolver needs to know about a signed-in user.
type Principal struct {
	UserID  int64
	IsAdmin bool
	Plan    models.PlanType
}

// ResolveRole applies the fixed precedence: no user, admin flag, plan.
func ResolveRole(p *Principal) Role {
	if p == nil {
		return RoleGuest
	}
	if p.IsAdmin {
		return RoleAdmin
	}
	switch p.Plan {
	case models.PlanPremium:
		return RolePremium
	case models.PlanStandard:
		return RoleStandard
	default:
		return RoleFree
	}
}

// ResolvePermissions returns the permission set of a role. Unknown roles get
// the free set.
func ResolvePermissions(role Role) Permissions {
	switch role {
	case RoleGuest:
		return Permissions{
			MaxVisiblePrompts: 20,
			MaxFavorites:      0,
			MaxCustomPrompts:  0,
		}
	case RoleStandard:
		return Permissions{
			CanViewAllPrompts:      true,
			CanCopyPrompts:         true,
			CanViewArticles:        true,
			CanViewStatistics:      true,
			CanCreateCustomPrompts: true,
			CanSaveFavorites:       true,
			MaxVisiblePrompts:      Unlimited,
			MaxFavorites:           100,
			MaxCustomPrompts:       50,
		}
	case RolePremium:
		return Permissions{
			CanViewAllPrompts:      true,
			CanCopyPrompts:         true,
			CanViewArticles:        true,
			CanViewStatistics:      true,
			CanCreateCustomPrompts: true,
			CanSaveFavorites:       true,
			CanManageFolders:       true,
			MaxVisiblePrompts:      Unlimited,
			MaxFavorites:           500,
			MaxCustomPrompts:       150,
		}
	case RoleAdmin:
		return Permissions{
			CanViewAllPrompts:      true,
			CanCopyPrompts:         true,
			CanViewArticles:        true,
			CanViewStatistics:      true,
			CanCreateCustomPrompts: true,
			CanSaveFavorites:       true,
			CanManageFolders:       true,
			MaxVisiblePrompts:      Unlimited,
			MaxFavorites:           Unlimited,
			MaxCustomPrompts:       Unlimited,
			IsAdmin:                true,
		}
	default:
		return Permissions{
			CanCopyPrompts:    true,
			CanSaveFavorites:  true,
			MaxVisiblePrompts: 20,
			MaxFavorites:      50,
			MaxCustomPrompts:  10,
		}
	}
}

// EffectivePlan derives the plan from the subscription mirror. Only an active
// subscription elevates a user; everything else is free.
func EffectivePlan(sub *models.Subscription) models.PlanType {
	if sub == nil || sub.Status != models.StatusActive {
		return models.PlanFree
	}
	return models.NormalizePlanType(string(sub.PlanType), false)
}

func planRank(plan models.PlanType) int {
	switch plan {
	case models.PlanPremium:
		return 2
	case models.PlanStandard:
		return 1
	default:
		return 0
	}
}

func roleRank(role Role) int {
	switch role {
	case RoleAdmin, RolePremium:
		return 2
	case RoleStandard:
		return 1
	default:
		return 0
	}
}

// CanAccessPlan reports whether a role may read the content of a prompt
// marked with the given plan.
func CanAccessPlan(role Role, plan models.PlanType) bool {
	return roleRank(role) >= planRank(plan)
}
