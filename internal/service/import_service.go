package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/digkill/PromptLibrary/internal/models"
	"github.com/digkill/PromptLibrary/internal/reconcile"
)

// ImportRequest is what a browser kept in local storage before sign-in.
type ImportRequest struct {
	Favorites     []string                `json:"favorites"`
	Folders       []models.FavoriteFolder `json:"folders"`
	CustomPrompts []models.Prompt         `json:"customPrompts"`
}

type ImportCounts struct {
	Favorites     int `json:"favorites"`
	Folders       int `json:"folders"`
	CustomPrompts int `json:"customPrompts"`
}

type ImportResult struct {
	Favorites     []string                `json:"favorites"`
	Folders       []models.FavoriteFolder `json:"folders"`
	CustomPrompts []models.Prompt         `json:"customPrompts"`
	Uploaded      ImportCounts            `json:"uploaded"`
}

// ImportService folds local data into the account. Running it twice with
// the same request uploads nothing the second time.
type ImportService struct {
	favorites FavoriteStore
	folders   FolderStore
	prompts   PromptStore
}

func NewImportService(favorites FavoriteStore, folders FolderStore, prompts PromptStore) *ImportService {
	return &ImportService{favorites: favorites, folders: folders, prompts: prompts}
}

func (s *ImportService) Import(ctx context.Context, acct Account, req ImportRequest) (*ImportResult, error) {
	if acct.IsGuest() {
		return nil, ErrUnauthorized
	}
	result := &ImportResult{}
	var err error
	// Custom prompts go first so favorites and folders can reference them.
	if result.CustomPrompts, result.Uploaded.CustomPrompts, err = s.importPrompts(ctx, acct, req.CustomPrompts); err != nil {
		return nil, err
	}
	if result.Favorites, result.Uploaded.Favorites, err = s.importFavorites(ctx, acct, req.Favorites); err != nil {
		return nil, err
	}
	if result.Folders, result.Uploaded.Folders, err = s.importFolders(ctx, acct, req.Folders); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ImportService) importPrompts(ctx context.Context, acct Account, local []models.Prompt) ([]models.Prompt, int, error) {
	remote, err := s.prompts.ListByOwner(ctx, acct.UserID())
	if err != nil {
		return nil, 0, err
	}
	if !acct.Permissions.CanCreateCustomPrompts {
		return remote, 0, nil
	}
	valid := make([]models.Prompt, 0, len(local))
	for _, p := range local {
		if strings.TrimSpace(p.ID) == "" || promptInputOf(p).validate() != nil {
			continue
		}
		valid = append(valid, p)
	}
	toUpload, _ := reconcile.Merge(valid, remote, func(p models.Prompt) string { return p.ID })

	final := remote
	owner := acct.UserID()
	for _, p := range toUpload {
		if !acct.Permissions.MaxCustomPrompts.Allows(len(final) + 1) {
			break
		}
		// The id may already belong to the catalog or another user.
		taken, err := s.prompts.GetByID(ctx, p.ID)
		if err != nil {
			return nil, 0, err
		}
		if taken != nil {
			continue
		}
		created := &models.Prompt{ID: p.ID, OwnerID: &owner}
		promptInputOf(p).apply(created)
		created.PlanType, created.IsPremium = models.PlanFree, false
		saved, err := s.prompts.Upsert(ctx, created)
		if err != nil {
			return nil, 0, err
		}
		final = append(final, *saved)
	}
	return final, len(final) - len(remote), nil
}

func (s *ImportService) importFavorites(ctx context.Context, acct Account, local []string) ([]string, int, error) {
	remote, err := s.favorites.List(ctx, acct.UserID())
	if err != nil {
		return nil, 0, err
	}
	if !acct.Permissions.CanSaveFavorites {
		return remote, 0, nil
	}
	existing, err := s.visibleIDs(ctx, acct, local)
	if err != nil {
		return nil, 0, err
	}
	toUpload, _ := reconcile.Merge(keepExisting(local, existing), remote, func(id string) string { return id })

	final := remote
	for _, id := range toUpload {
		if !acct.Permissions.MaxFavorites.Allows(len(final) + 1) {
			break
		}
		if err := s.favorites.Add(ctx, acct.UserID(), id); err != nil {
			return nil, 0, err
		}
		final = append(final, id)
	}
	return final, len(final) - len(remote), nil
}

// importFolders matches folders by name, which is unique per owner. Uploaded
// folders get fresh ids so a client cannot address someone else's row.
func (s *ImportService) importFolders(ctx context.Context, acct Account, local []models.FavoriteFolder) ([]models.FavoriteFolder, int, error) {
	remote, err := s.folders.List(ctx, acct.UserID())
	if err != nil {
		return nil, 0, err
	}
	if !acct.Permissions.CanManageFolders {
		return remote, 0, nil
	}
	cleaned := make([]models.FavoriteFolder, 0, len(local))
	var referenced []string
	for _, f := range local {
		name, err := cleanFolderName(f.Name)
		if err != nil {
			continue
		}
		f.Name = name
		cleaned = append(cleaned, f)
		referenced = append(referenced, f.PromptIDs...)
	}
	existing, err := s.visibleIDs(ctx, acct, referenced)
	if err != nil {
		return nil, 0, err
	}
	toUpload, _ := reconcile.Merge(cleaned, remote, func(f models.FavoriteFolder) string { return f.Name })

	final := remote
	for _, f := range toUpload {
		saved, err := s.folders.Save(ctx, &models.FavoriteFolder{
			ID:        uuid.NewString(),
			UserID:    acct.UserID(),
			Name:      f.Name,
			PromptIDs: cleanLabels(keepExisting(f.PromptIDs, existing)),
		})
		if err != nil {
			return nil, 0, err
		}
		final = append(final, *saved)
	}
	return final, len(final) - len(remote), nil
}

// visibleIDs is the subset of ids naming prompts the account can see.
func (s *ImportService) visibleIDs(ctx context.Context, acct Account, ids []string) (map[string]bool, error) {
	found, err := s.prompts.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(found))
	for _, p := range found {
		if !ownedByOther(acct, p) {
			set[p.ID] = true
		}
	}
	return set, nil
}

func promptInputOf(p models.Prompt) PromptInput {
	return PromptInput{
		Title:    p.Title,
		Content:  p.Content,
		Category: p.Category,
		UseCase:  p.UseCase,
		Tags:     p.Tags,
		Usage:    p.Usage,
		Example:  p.Example,
	}
}
