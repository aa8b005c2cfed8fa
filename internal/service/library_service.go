package service

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/digkill/PromptLibrary/internal/catalog"
	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
	"github.com/digkill/PromptLibrary/internal/recommend"
	"github.com/digkill/PromptLibrary/internal/usage"
)

const (
	defaultRecommendations = 5
	maxRecommendations     = 20
)

// PromptView is a prompt as shown to a particular account. Locked prompts
// carry metadata only.
type PromptView struct {
	models.Prompt
	Locked     bool `json:"locked"`
	IsFavorite bool `json:"isFavorite"`
}

type PromptListing struct {
	Prompts     []PromptView            `json:"prompts"`
	Total       int                     `json:"total"`
	Truncated   bool                    `json:"truncated"`
	Permissions entitlement.Permissions `json:"permissions"`
}

type ListRequest struct {
	Query    catalog.Query
	View     catalog.View
	FolderID string
}

type RenderResult struct {
	Content   string   `json:"content"`
	Variables []string `json:"variables"`
}

// LibraryService serves the prompt catalog and the per-user views over it.
type LibraryService struct {
	prompts   PromptStore
	favorites FavoriteStore
	folders   FolderStore
	tracker   *usage.Tracker
	lang      language.Tag
}

func NewLibraryService(prompts PromptStore, favorites FavoriteStore, folders FolderStore, tracker *usage.Tracker, lang language.Tag) *LibraryService {
	return &LibraryService{
		prompts:   prompts,
		favorites: favorites,
		folders:   folders,
		tracker:   tracker,
		lang:      lang,
	}
}

func (s *LibraryService) List(ctx context.Context, acct Account, req ListRequest) (*PromptListing, error) {
	if req.View == "" {
		req.View = catalog.ViewHome
	}
	source, err := s.source(ctx, acct, req)
	if err != nil {
		return nil, err
	}
	favs, err := s.favoriteIDs(ctx, acct)
	if err != nil {
		return nil, err
	}
	signals := catalog.Signals{
		UsageCounts: s.usageCounts(ctx, acct),
		Favorites:   toSet(favs),
		Language:    s.lang,
	}

	filtered := catalog.Filter(source, req.Query, signals)
	visible := catalog.Truncate(filtered, req.View, acct.Permissions)

	listing := &PromptListing{
		Prompts:     make([]PromptView, 0, len(visible)),
		Total:       len(filtered),
		Truncated:   len(visible) < len(filtered),
		Permissions: acct.Permissions,
	}
	for _, p := range visible {
		listing.Prompts = append(listing.Prompts, present(acct, p, signals.Favorites))
	}
	return listing, nil
}

func (s *LibraryService) source(ctx context.Context, acct Account, req ListRequest) ([]models.Prompt, error) {
	switch req.View {
	case catalog.ViewHome:
		return s.prompts.ListCatalog(ctx)
	case catalog.ViewFavorites:
		if acct.IsGuest() {
			return nil, ErrUnauthorized
		}
		ids, err := s.favorites.List(ctx, acct.UserID())
		if err != nil {
			return nil, err
		}
		return s.resolveIDs(ctx, acct, ids)
	case catalog.ViewCustom:
		if acct.IsGuest() {
			return nil, ErrUnauthorized
		}
		return s.prompts.ListByOwner(ctx, acct.UserID())
	case catalog.ViewFolder:
		if acct.IsGuest() {
			return nil, ErrUnauthorized
		}
		if !acct.Permissions.CanManageFolders {
			return nil, ErrForbidden
		}
		folder, err := s.folders.Get(ctx, acct.UserID(), req.FolderID)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, ErrNotFound
		}
		return s.resolveIDs(ctx, acct, folder.PromptIDs)
	default:
		return nil, fmt.Errorf("%w: unknown view %q", ErrInvalidInput, req.View)
	}
}

// resolveIDs loads prompts in the order of ids. Deleted prompts and other
// users' custom prompts are dropped.
func (s *LibraryService) resolveIDs(ctx context.Context, acct Account, ids []string) ([]models.Prompt, error) {
	found, err := s.prompts.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Prompt, len(found))
	for _, p := range found {
		if ownedByOther(acct, p) {
			continue
		}
		byID[p.ID] = p
	}
	out := make([]models.Prompt, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out, nil
}

func (s *LibraryService) Tags(ctx context.Context, category, useCase string) ([]catalog.TagCount, error) {
	prompts, err := s.prompts.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.TagCounts(prompts, category, useCase), nil
}

func (s *LibraryService) Get(ctx context.Context, acct Account, id string) (*PromptView, error) {
	p, err := s.lookup(ctx, acct, id)
	if err != nil {
		return nil, err
	}
	favs, err := s.favoriteIDs(ctx, acct)
	if err != nil {
		return nil, err
	}
	view := present(acct, *p, toSet(favs))
	return &view, nil
}

// RecordUse logs a copy of the prompt. Persisting the event is best effort.
func (s *LibraryService) RecordUse(ctx context.Context, acct Account, id string) error {
	if _, err := s.usable(ctx, acct, id); err != nil {
		return err
	}
	s.tracker.RecordUse(ctx, acct.UsageOwner(), id)
	return nil
}

// Render fills the prompt's placeholders with values.
func (s *LibraryService) Render(ctx context.Context, acct Account, id string, values map[string]string) (*RenderResult, error) {
	p, err := s.usable(ctx, acct, id)
	if err != nil {
		return nil, err
	}
	vars := catalog.Variables(p.Content)
	if vars == nil {
		vars = []string{}
	}
	return &RenderResult{Content: catalog.Fill(p.Content, values), Variables: vars}, nil
}

func (s *LibraryService) Stats(ctx context.Context, acct Account) (usage.Stats, error) {
	if acct.IsGuest() {
		return usage.Stats{}, ErrUnauthorized
	}
	if !acct.Permissions.CanViewStatistics {
		return usage.Stats{}, ErrForbidden
	}
	return s.tracker.Stats(ctx, acct.UsageOwner()), nil
}

// Recommendations only suggests prompts the account can open. The profile is
// built from the whole catalog so locked favorites still shape the result.
func (s *LibraryService) Recommendations(ctx context.Context, acct Account, count int) ([]recommend.Recommendation, error) {
	if acct.IsGuest() {
		return nil, ErrUnauthorized
	}
	if count <= 0 {
		count = defaultRecommendations
	}
	count = min(count, maxRecommendations)

	catalogPrompts, err := s.prompts.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	favs, err := s.favoriteIDs(ctx, acct)
	if err != nil {
		return nil, err
	}
	stats := s.tracker.Stats(ctx, acct.UsageOwner())
	ranked := recommend.Recommend(catalogPrompts, stats, s.usageCounts(ctx, acct), favs, len(catalogPrompts))

	out := make([]recommend.Recommendation, 0, count)
	for _, rec := range ranked {
		if len(out) == count {
			break
		}
		if entitlement.CanAccessPlan(acct.Role, rec.Prompt.PlanType) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// lookup finds a prompt the account is allowed to know about.
func (s *LibraryService) lookup(ctx context.Context, acct Account, id string) (*models.Prompt, error) {
	p, err := s.prompts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || ownedByOther(acct, *p) {
		return nil, ErrNotFound
	}
	return p, nil
}

// usable finds a prompt the account may copy.
func (s *LibraryService) usable(ctx context.Context, acct Account, id string) (*models.Prompt, error) {
	if acct.IsGuest() {
		return nil, ErrUnauthorized
	}
	if !acct.Permissions.CanCopyPrompts {
		return nil, ErrForbidden
	}
	p, err := s.lookup(ctx, acct, id)
	if err != nil {
		return nil, err
	}
	if locked(acct, *p) {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *LibraryService) favoriteIDs(ctx context.Context, acct Account) ([]string, error) {
	if acct.IsGuest() {
		return nil, nil
	}
	return s.favorites.List(ctx, acct.UserID())
}

func (s *LibraryService) usageCounts(ctx context.Context, acct Account) map[string]int {
	if acct.IsGuest() {
		return nil
	}
	return s.tracker.Counts(ctx, acct.UsageOwner())
}

func ownedByOther(acct Account, p models.Prompt) bool {
	return p.OwnerID != nil && *p.OwnerID != acct.UserID()
}

func locked(acct Account, p models.Prompt) bool {
	if p.IsCustom() {
		return false
	}
	return !entitlement.CanAccessPlan(acct.Role, p.PlanType)
}

func present(acct Account, p models.Prompt, favorites map[string]bool) PromptView {
	view := PromptView{Prompt: p, IsFavorite: favorites[p.ID]}
	if locked(acct, p) {
		view.Locked = true
		view.Content = ""
		view.Usage = ""
		view.Example = ""
	}
	return view
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
