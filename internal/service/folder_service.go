package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/digkill/PromptLibrary/internal/models"
)

const maxFolderNameLength = 100

type FolderService struct {
	folders FolderStore
	prompts PromptStore
}

func NewFolderService(folders FolderStore, prompts PromptStore) *FolderService {
	return &FolderService{folders: folders, prompts: prompts}
}

func requireFolders(acct Account) error {
	if acct.IsGuest() {
		return ErrUnauthorized
	}
	if !acct.Permissions.CanManageFolders {
		return ErrForbidden
	}
	return nil
}

func cleanFolderName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: folder name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxFolderNameLength {
		return "", fmt.Errorf("%w: folder name is too long", ErrInvalidInput)
	}
	return name, nil
}

// List returns the account's folders with ids of deleted prompts removed.
func (s *FolderService) List(ctx context.Context, acct Account) ([]models.FavoriteFolder, error) {
	if err := requireFolders(acct); err != nil {
		return nil, err
	}
	folders, err := s.folders.List(ctx, acct.UserID())
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, f := range folders {
		ids = append(ids, f.PromptIDs...)
	}
	existing, err := existingIDs(ctx, s.prompts, ids)
	if err != nil {
		return nil, err
	}
	for i := range folders {
		folders[i].PromptIDs = keepExisting(folders[i].PromptIDs, existing)
	}
	return folders, nil
}

func (s *FolderService) Create(ctx context.Context, acct Account, rawName string) (*models.FavoriteFolder, error) {
	if err := requireFolders(acct); err != nil {
		return nil, err
	}
	name, err := cleanFolderName(rawName)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, acct.UserID(), name, ""); err != nil {
		return nil, err
	}
	return s.folders.Save(ctx, &models.FavoriteFolder{
		ID:        uuid.NewString(),
		UserID:    acct.UserID(),
		Name:      name,
		PromptIDs: []string{},
	})
}

func (s *FolderService) Rename(ctx context.Context, acct Account, id, rawName string) (*models.FavoriteFolder, error) {
	if err := requireFolders(acct); err != nil {
		return nil, err
	}
	name, err := cleanFolderName(rawName)
	if err != nil {
		return nil, err
	}
	folder, err := s.get(ctx, acct, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, acct.UserID(), name, folder.ID); err != nil {
		return nil, err
	}
	folder.Name = name
	return s.folders.Save(ctx, folder)
}

func (s *FolderService) Delete(ctx context.Context, acct Account, id string) error {
	if err := requireFolders(acct); err != nil {
		return err
	}
	if _, err := s.get(ctx, acct, id); err != nil {
		return err
	}
	return s.folders.Delete(ctx, acct.UserID(), id)
}

// AddPrompt appends a prompt to the folder unless it is already there.
func (s *FolderService) AddPrompt(ctx context.Context, acct Account, id, promptID string) (*models.FavoriteFolder, error) {
	if err := requireFolders(acct); err != nil {
		return nil, err
	}
	folder, err := s.get(ctx, acct, id)
	if err != nil {
		return nil, err
	}
	p, err := s.prompts.GetByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if p == nil || ownedByOther(acct, *p) {
		return nil, ErrNotFound
	}
	if slices.Contains(folder.PromptIDs, promptID) {
		return folder, nil
	}
	folder.PromptIDs = append(folder.PromptIDs, promptID)
	return s.folders.Save(ctx, folder)
}

func (s *FolderService) RemovePrompt(ctx context.Context, acct Account, id, promptID string) (*models.FavoriteFolder, error) {
	if err := requireFolders(acct); err != nil {
		return nil, err
	}
	folder, err := s.get(ctx, acct, id)
	if err != nil {
		return nil, err
	}
	folder.PromptIDs = slices.DeleteFunc(folder.PromptIDs, func(v string) bool { return v == promptID })
	return s.folders.Save(ctx, folder)
}

func (s *FolderService) get(ctx context.Context, acct Account, id string) (*models.FavoriteFolder, error) {
	folder, err := s.folders.Get(ctx, acct.UserID(), id)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, ErrNotFound
	}
	return folder, nil
}

func (s *FolderService) ensureNameFree(ctx context.Context, userID int64, name, selfID string) error {
	other, err := s.folders.FindByName(ctx, userID, name)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return fmt.Errorf("%w: folder %q already exists", ErrConflict, name)
	}
	return nil
}

// existingIDs reports which of ids still name a stored prompt.
func existingIDs(ctx context.Context, prompts PromptStore, ids []string) (map[string]bool, error) {
	found, err := prompts.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(found))
	for _, p := range found {
		set[p.ID] = true
	}
	return set, nil
}

func keepExisting(ids []string, existing map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if existing[id] {
			out = append(out, id)
		}
	}
	return out
}
