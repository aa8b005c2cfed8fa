package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/digkill/PromptLibrary/internal/models"
)

// PromptAdminService curates the shared catalog.
type PromptAdminService struct {
	prompts PromptStore
}

func NewPromptAdminService(prompts PromptStore) *PromptAdminService {
	return &PromptAdminService{prompts: prompts}
}

func (s *PromptAdminService) List(ctx context.Context) ([]models.Prompt, error) {
	return s.prompts.ListCatalog(ctx)
}

func (s *PromptAdminService) Create(ctx context.Context, input PromptInput) (*models.Prompt, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	p := &models.Prompt{ID: uuid.NewString()}
	input.apply(p)
	return s.prompts.Upsert(ctx, p)
}

func (s *PromptAdminService) Update(ctx context.Context, id string, input PromptInput) (*models.Prompt, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	p, err := s.catalogPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(p)
	return s.prompts.Upsert(ctx, p)
}

func (s *PromptAdminService) Delete(ctx context.Context, id string) error {
	if _, err := s.catalogPrompt(ctx, id); err != nil {
		return err
	}
	return s.prompts.Delete(ctx, id)
}

func (s *PromptAdminService) catalogPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	p, err := s.prompts.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if p == nil || p.IsCustom() {
		return nil, ErrNotFound
	}
	return p, nil
}
