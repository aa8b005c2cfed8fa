package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digkill/PromptLibrary/internal/models"
)

type FolderRepository struct {
	db *sql.DB
}

func NewFolderRepository(db *sql.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) List(ctx context.Context, userID int64) ([]models.FavoriteFolder, error) {
	query := `SELECT ` + folderColumns + ` FROM favorite_folders WHERE user_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.FavoriteFolder{}
	for rows.Next() {
		var row folderRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folderFromRow(row))
	}
	return folders, rows.Err()
}

func (r *FolderRepository) Get(ctx context.Context, userID int64, id string) (*models.FavoriteFolder, error) {
	query := `SELECT ` + folderColumns + ` FROM favorite_folders WHERE user_id = ? AND id = ?`
	var row folderRow
	if err := r.db.QueryRowContext(ctx, query, userID, id).Scan(row.scanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	f := folderFromRow(row)
	return &f, nil
}

func (r *FolderRepository) FindByName(ctx context.Context, userID int64, name string) (*models.FavoriteFolder, error) {
	query := `SELECT ` + folderColumns + ` FROM favorite_folders WHERE user_id = ? AND name = ?`
	var row folderRow
	if err := r.db.QueryRowContext(ctx, query, userID, name).Scan(row.scanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find folder by name: %w", err)
	}
	f := folderFromRow(row)
	return &f, nil
}

// Save inserts the folder or overwrites its name and prompt ids.
func (r *FolderRepository) Save(ctx context.Context, f *models.FavoriteFolder) (*models.FavoriteFolder, error) {
	const query = `
INSERT INTO favorite_folders (id, user_id, name, prompt_ids)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE name = VALUES(name), prompt_ids = VALUES(prompt_ids), updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, f.ID, f.UserID, f.Name, encodeList(f.PromptIDs)); err != nil {
		return nil, fmt.Errorf("save folder: %w", err)
	}
	return r.Get(ctx, f.UserID, f.ID)
}

func (r *FolderRepository) Delete(ctx context.Context, userID int64, id string) error {
	const query = `DELETE FROM favorite_folders WHERE user_id = ? AND id = ?`
	if _, err := r.db.ExecContext(ctx, query, userID, id); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}
