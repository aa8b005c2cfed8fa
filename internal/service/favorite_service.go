package service

import (
	"context"
	"slices"
)

type FavoriteService struct {
	favorites FavoriteStore
	prompts   PromptStore
}

func NewFavoriteService(favorites FavoriteStore, prompts PromptStore) *FavoriteService {
	return &FavoriteService{favorites: favorites, prompts: prompts}
}

// List returns the favorites whose prompts still exist.
func (s *FavoriteService) List(ctx context.Context, acct Account) ([]string, error) {
	if acct.IsGuest() {
		return nil, ErrUnauthorized
	}
	return s.live(ctx, acct.UserID())
}

// live drops ids of deleted prompts so they neither show up nor count
// against MaxFavorites.
func (s *FavoriteService) live(ctx context.Context, userID int64) ([]string, error) {
	ids, err := s.favorites.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	existing, err := existingIDs(ctx, s.prompts, ids)
	if err != nil {
		return nil, err
	}
	return keepExisting(ids, existing), nil
}

// Add favorites a prompt. Adding one that is already a favorite succeeds
// without counting against the limit.
func (s *FavoriteService) Add(ctx context.Context, acct Account, promptID string) ([]string, error) {
	if acct.IsGuest() {
		return nil, ErrUnauthorized
	}
	if !acct.Permissions.CanSaveFavorites {
		return nil, ErrForbidden
	}
	p, err := s.prompts.GetByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if p == nil || ownedByOther(acct, *p) {
		return nil, ErrNotFound
	}
	current, err := s.live(ctx, acct.UserID())
	if err != nil {
		return nil, err
	}
	if slices.Contains(current, promptID) {
		return current, nil
	}
	if !acct.Permissions.MaxFavorites.Allows(len(current) + 1) {
		return nil, ErrLimitReached
	}
	if err := s.favorites.Add(ctx, acct.UserID(), promptID); err != nil {
		return nil, err
	}
	return s.live(ctx, acct.UserID())
}

func (s *FavoriteService) Remove(ctx context.Context, acct Account, promptID string) ([]string, error) {
	if acct.IsGuest() {
		return nil, ErrUnauthorized
	}
	if err := s.favorites.Remove(ctx, acct.UserID(), promptID); err != nil {
		return nil, err
	}
	return s.live(ctx, acct.UserID())
}
