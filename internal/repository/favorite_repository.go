package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type FavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// List returns the user's favorite prompt ids, most recently added first.
func (r *FavoriteRepository) List(ctx context.Context, userID int64) ([]string, error) {
	const query = `SELECT prompt_id FROM favorites WHERE user_id = ? ORDER BY created_at DESC, prompt_id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Add is a no-op when the favorite already exists.
func (r *FavoriteRepository) Add(ctx context.Context, userID int64, promptID string) error {
	const query = `INSERT IGNORE INTO favorites (user_id, prompt_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, userID, promptID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID int64, promptID string) error {
	const query = `DELETE FROM favorites WHERE user_id = ? AND prompt_id = ?`
	if _, err := r.db.ExecContext(ctx, query, userID, promptID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}
