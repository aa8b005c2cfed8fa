// Package recommend suggests unseen prompts that resemble what a user already
// copies or favorites.
package recommend

import (
	"cmp"
	"slices"
	"strings"

	"github.com/digkill/PromptLibrary/internal/models"
	"github.com/digkill/PromptLibrary/internal/usage"
)

const (
	ReasonNew          = "new"
	ReasonSameCategory = "same category"
	ReasonSameUseCase  = "same use-case"
	ReasonPopular      = "popular"
	reasonTagsPrefix   = "similar tags: "

	categoryWeight = 10
	categoryCap    = 30
	tagWeight      = 5
	tagCap         = 40
	useCaseWeight  = 5
	useCaseCap     = 20
	popularityCap  = 10
	maxTagReasons  = 2
)

type Recommendation struct {
	Prompt  models.Prompt `json:"prompt"`
	Reasons []string      `json:"reasons"`
	Score   int           `json:"score"`
}

// Recommend scores every prompt outside the user's profile (most used or
// favorited prompts) and returns the best count of them. counts holds the
// full per-prompt copy history and drives the popularity bonus. Without any
// profile it falls back to catalog order.
func Recommend(prompts []models.Prompt, stats usage.Stats, counts map[string]int, favorites []string, count int) []Recommendation {
	if count <= 0 {
		return []Recommendation{}
	}

	inProfile := make(map[string]bool)
	for _, pc := range stats.MostUsedPrompts {
		inProfile[pc.PromptID] = true
	}
	for _, id := range favorites {
		inProfile[id] = true
	}

	var profile []models.Prompt
	seen := make(map[string]bool)
	for _, p := range prompts {
		if inProfile[p.ID] && !seen[p.ID] {
			seen[p.ID] = true
			profile = append(profile, p)
		}
	}

	if len(profile) == 0 {
		n := min(count, len(prompts))
		out := make([]Recommendation, 0, n)
		for _, p := range prompts[:n] {
			out = append(out, Recommendation{Prompt: p, Reasons: []string{ReasonNew}})
		}
		return out
	}

	categoryFreq := make(map[string]int)
	tagFreq := make(map[string]int)
	useCaseFreq := make(map[string]int)
	for _, p := range profile {
		categoryFreq[p.Category]++
		for _, tag := range p.Tags {
			tagFreq[tag]++
		}
		for _, uc := range p.UseCase {
			useCaseFreq[uc]++
		}
	}
	var scored []Recommendation
	for _, p := range prompts {
		if inProfile[p.ID] {
			continue
		}
		rec := score(p, categoryFreq, tagFreq, useCaseFreq, counts)
		if rec.Score > 0 {
			scored = append(scored, rec)
		}
	}

	slices.SortStableFunc(scored, func(a, b Recommendation) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(scored) > count {
		scored = scored[:count]
	}
	if scored == nil {
		scored = []Recommendation{}
	}
	return scored
}

func score(p models.Prompt, categoryFreq, tagFreq, useCaseFreq, usageCounts map[string]int) Recommendation {
	rec := Recommendation{Prompt: p, Reasons: []string{}}

	if n := categoryFreq[p.Category]; n > 0 {
		rec.Score += min(n*categoryWeight, categoryCap)
		rec.Reasons = append(rec.Reasons, ReasonSameCategory)
	}

	tagScore := 0
	var matched []string
	for _, tag := range p.Tags {
		if n := tagFreq[tag]; n > 0 {
			tagScore += n * tagWeight
			matched = append(matched, tag)
		}
	}
	if tagScore > 0 {
		rec.Score += min(tagScore, tagCap)
		if len(matched) > maxTagReasons {
			matched = matched[:maxTagReasons]
		}
		rec.Reasons = append(rec.Reasons, reasonTagsPrefix+strings.Join(matched, ", "))
	}

	useCaseScore := 0
	for _, uc := range p.UseCase {
		useCaseScore += useCaseFreq[uc] * useCaseWeight
	}
	if useCaseScore > 0 {
		rec.Score += min(useCaseScore, useCaseCap)
		rec.Reasons = append(rec.Reasons, ReasonSameUseCase)
	}

	if n := usageCounts[p.ID]; n > 0 {
		rec.Score += min(n, popularityCap)
		rec.Reasons = append(rec.Reasons, ReasonPopular)
	}
	return rec
}
