package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/digkill/PromptLibrary/internal/models"
)

// CustomPromptService manages prompts authored by end users. Custom prompts
// are always free-plan so their owner can use them after a downgrade.
type CustomPromptService struct {
	prompts PromptStore
}

func NewCustomPromptService(prompts PromptStore) *CustomPromptService {
	return &CustomPromptService{prompts: prompts}
}

func requireAuthoring(acct Account) error {
	if acct.IsGuest() {
		return ErrUnauthorized
	}
	if !acct.Permissions.CanCreateCustomPrompts {
		return ErrForbidden
	}
	return nil
}

func (s *CustomPromptService) List(ctx context.Context, acct Account) ([]models.Prompt, error) {
	if acct.IsGuest() {
		return nil, ErrUnauthorized
	}
	return s.prompts.ListByOwner(ctx, acct.UserID())
}

func (s *CustomPromptService) Create(ctx context.Context, acct Account, input PromptInput) (*models.Prompt, error) {
	if err := requireAuthoring(acct); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	count, err := s.prompts.CountByOwner(ctx, acct.UserID())
	if err != nil {
		return nil, err
	}
	if !acct.Permissions.MaxCustomPrompts.Allows(count + 1) {
		return nil, ErrLimitReached
	}
	owner := acct.UserID()
	p := &models.Prompt{ID: uuid.NewString(), OwnerID: &owner}
	input.apply(p)
	p.PlanType, p.IsPremium = models.PlanFree, false
	return s.prompts.Upsert(ctx, p)
}

func (s *CustomPromptService) Update(ctx context.Context, acct Account, id string, input PromptInput) (*models.Prompt, error) {
	if err := requireAuthoring(acct); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, acct, id)
	if err != nil {
		return nil, err
	}
	input.apply(p)
	p.PlanType, p.IsPremium = models.PlanFree, false
	return s.prompts.Upsert(ctx, p)
}

// Delete removes an owned prompt. Owners may delete even without authoring
// rights.
func (s *CustomPromptService) Delete(ctx context.Context, acct Account, id string) error {
	if acct.IsGuest() {
		return ErrUnauthorized
	}
	if _, err := s.owned(ctx, acct, id); err != nil {
		return err
	}
	return s.prompts.Delete(ctx, id)
}

func (s *CustomPromptService) owned(ctx context.Context, acct Account, id string) (*models.Prompt, error) {
	p, err := s.prompts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.OwnerID == nil || *p.OwnerID != acct.UserID() {
		return nil, ErrNotFound
	}
	return p, nil
}
