package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/digkill/PromptLibrary/internal/models"
)

// PromptRepository stores catalog prompts (owner_id NULL) and user-authored
// custom prompts in the same table.
type PromptRepository struct {
	db *sql.DB
}

func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) queryPrompts(ctx context.Context, query string, args ...any) ([]models.Prompt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	prompts := []models.Prompt{}
	for rows.Next() {
		var row promptRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, promptFromRow(row))
	}
	return prompts, rows.Err()
}

// ListCatalog returns curated prompts newest first.
func (r *PromptRepository) ListCatalog(ctx context.Context) ([]models.Prompt, error) {
	query := `SELECT ` + promptColumns + ` FROM prompts WHERE owner_id IS NULL ORDER BY created_at DESC, id ASC`
	return r.queryPrompts(ctx, query)
}

func (r *PromptRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Prompt, error) {
	query := `SELECT ` + promptColumns + ` FROM prompts WHERE owner_id = ? ORDER BY created_at DESC, id ASC`
	return r.queryPrompts(ctx, query, ownerID)
}

// ListByIDs returns the prompts that still exist among ids, in no particular
// order.
func (r *PromptRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Prompt, error) {
	if len(ids) == 0 {
		return []models.Prompt{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + promptColumns + ` FROM prompts WHERE id IN (` + placeholders + `)`
	return r.queryPrompts(ctx, query, args...)
}

func (r *PromptRepository) GetByID(ctx context.Context, id string) (*models.Prompt, error) {
	query := `SELECT ` + promptColumns + ` FROM prompts WHERE id = ?`
	var row promptRow
	if err := r.db.QueryRowContext(ctx, query, id).Scan(row.scanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prompt: %w", err)
	}
	p := promptFromRow(row)
	return &p, nil
}

func (r *PromptRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM prompts WHERE owner_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count prompts: %w", err)
	}
	return n, nil
}

// Upsert inserts the prompt or overwrites the row with the same id.
func (r *PromptRepository) Upsert(ctx context.Context, p *models.Prompt) (*models.Prompt, error) {
	const query = `
INSERT INTO prompts (id, owner_id, title, content, category, use_cases, tags, usage_text, example, plan_type, is_premium)
VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)
ON DUPLICATE KEY UPDATE
    title = VALUES(title), content = VALUES(content), category = VALUES(category),
    use_cases = VALUES(use_cases), tags = VALUES(tags), usage_text = VALUES(usage_text),
    example = VALUES(example), plan_type = VALUES(plan_type), is_premium = VALUES(is_premium),
    updated_at = NOW()`
	planType := models.NormalizePlanType(string(p.PlanType), p.IsPremium)
	_, err := r.db.ExecContext(ctx, query,
		p.ID, nullInt64(p.OwnerID), p.Title, p.Content, p.Category,
		encodeList(p.UseCase), encodeList(p.Tags), p.Usage, p.Example,
		string(planType), boolInt(planType == models.PlanPremium),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert prompt: %w", err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PromptRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM prompts WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	return nil
}
