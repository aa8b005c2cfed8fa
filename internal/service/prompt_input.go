package service

import (
	"fmt"
	"strings"

	"github.com/digkill/PromptLibrary/internal/catalog"
	"github.com/digkill/PromptLibrary/internal/models"
)

// PromptInput is the editable part of a prompt, shared by custom prompts and
// the admin catalog.
type PromptInput struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	UseCase   []string `json:"useCase"`
	Tags      []string `json:"tags"`
	Usage     string   `json:"usage"`
	Example   string   `json:"example"`
	PlanType  string   `json:"planType"`
	IsPremium bool     `json:"isPremium"`
}

func (in PromptInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if !catalog.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	for _, u := range in.UseCase {
		if !catalog.ValidUseCase(u) {
			return fmt.Errorf("%w: unknown use-case %q", ErrInvalidInput, u)
		}
	}
	return nil
}

// apply copies the input onto p.
func (in PromptInput) apply(p *models.Prompt) {
	p.Title = strings.TrimSpace(in.Title)
	p.Content = in.Content
	p.Category = in.Category
	p.UseCase = cleanLabels(in.UseCase)
	p.Tags = cleanLabels(in.Tags)
	p.Usage = strings.TrimSpace(in.Usage)
	p.Example = strings.TrimSpace(in.Example)
	p.PlanType = models.NormalizePlanType(in.PlanType, in.IsPremium)
	p.IsPremium = p.PlanType == models.PlanPremium
}

// cleanLabels trims, drops empties and removes duplicates keeping first
// occurrences.
func cleanLabels(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
