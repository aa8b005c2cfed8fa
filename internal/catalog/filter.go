// Package catalog narrows and orders prompt collections for the library views.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
)

// All is the wildcard value for the category and use-case stages.
const All = "all"

type TagMode string

const (
	TagModeAnd TagMode = "and"
	TagModeOr  TagMode = "or"
)

// ParseTagMode accepts "and"/"or" in any case; anything else is OR.
func ParseTagMode(raw string) TagMode {
	if strings.EqualFold(strings.TrimSpace(raw), string(TagModeAnd)) {
		return TagModeAnd
	}
	return TagModeOr
}

type SortOrder string

const (
	SortDefault  SortOrder = "default"
	SortPopular  SortOrder = "popular"
	SortFavorite SortOrder = "favorite"
	SortName     SortOrder = "name"
)

// ParseSortOrder maps unknown values to SortDefault.
func ParseSortOrder(raw string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case SortPopular:
		return SortPopular
	case SortFavorite:
		return SortFavorite
	case SortName:
		return SortName
	default:
		return SortDefault
	}
}

type Query struct {
	Category string
	UseCase  string
	Tags     []string
	TagMode  TagMode
	Text     string
	SortBy   SortOrder
}

// Signals carries per-user data the sort stage needs.
type Signals struct {
	UsageCounts map[string]int
	Favorites   map[string]bool
	Language    language.Tag
}

// Filter runs category, use-case, tag, text and sort stages in that order.
// The input slice is never modified.
func Filter(prompts []models.Prompt, q Query, sig Signals) []models.Prompt {
	out := make([]models.Prompt, 0, len(prompts))
	text := strings.ToLower(strings.TrimSpace(q.Text))
	for _, p := range prompts {
		if !matchCategory(p, q.Category) {
			continue
		}
		if !matchUseCase(p, q.UseCase) {
			continue
		}
		if !matchTags(p, q.Tags, q.TagMode) {
			continue
		}
		if !matchText(p, text) {
			continue
		}
		out = append(out, p)
	}
	sortPrompts(out, q.SortBy, sig)
	return out
}

func isWildcard(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All
}

func matchCategory(p models.Prompt, category string) bool {
	if isWildcard(category) {
		return true
	}
	return p.Category == category
}

func matchUseCase(p models.Prompt, useCase string) bool {
	if isWildcard(useCase) {
		return true
	}
	if len(p.UseCase) == 0 {
		return slices.Contains(p.Tags, useCase)
	}
	return slices.Contains(p.UseCase, useCase)
}

func matchTags(p models.Prompt, selected []string, mode TagMode) bool {
	if len(selected) == 0 {
		return true
	}
	if mode == TagModeAnd {
		for _, tag := range selected {
			if !slices.Contains(p.Tags, tag) {
				return false
			}
		}
		return true
	}
	for _, tag := range selected {
		if slices.Contains(p.Tags, tag) {
			return true
		}
	}
	return false
}

// matchText expects text already lower-cased.
func matchText(p models.Prompt, text string) bool {
	if text == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), text) || strings.Contains(strings.ToLower(p.Content), text) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), text) {
			return true
		}
	}
	for _, uc := range p.UseCase {
		if strings.Contains(strings.ToLower(uc), text) {
			return true
		}
	}
	return false
}

func sortPrompts(prompts []models.Prompt, order SortOrder, sig Signals) {
	switch order {
	case SortPopular:
		slices.SortStableFunc(prompts, func(a, b models.Prompt) int {
			return cmp.Compare(sig.UsageCounts[b.ID], sig.UsageCounts[a.ID])
		})
	case SortFavorite:
		slices.SortStableFunc(prompts, func(a, b models.Prompt) int {
			fa, fb := sig.Favorites[a.ID], sig.Favorites[b.ID]
			switch {
			case fa == fb:
				return 0
			case fa:
				return -1
			default:
				return 1
			}
		})
	case SortName:
		col := collate.New(sig.Language)
		slices.SortStableFunc(prompts, func(a, b models.Prompt) int {
			return col.CompareString(a.Title, b.Title)
		})
	}
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts counts tags over the category and use-case subset only, so the
// numbers shown next to tags agree with the coarse filters in effect.
func TagCounts(prompts []models.Prompt, category, useCase string) []TagCount {
	counts := make(map[string]int)
	for _, p := range prompts {
		if !matchCategory(p, category) || !matchUseCase(p, useCase) {
			continue
		}
		for _, tag := range p.Tags {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return out
}

type View string

const (
	ViewHome      View = "home"
	ViewFavorites View = "favorites"
	ViewCustom    View = "custom"
	ViewFolder    View = "folder"
)

// Truncate caps the home listing at the role's MaxVisiblePrompts. Other views
// are returned untouched.
func Truncate(prompts []models.Prompt, view View, perms entitlement.Permissions) []models.Prompt {
	if view != ViewHome || perms.CanViewAllPrompts || perms.MaxVisiblePrompts == entitlement.Unlimited {
		return prompts
	}
	limit := int(perms.MaxVisiblePrompts)
	if limit < 0 {
		limit = 0
	}
	if len(prompts) <= limit {
		return prompts
	}
	return prompts[:limit]
}
