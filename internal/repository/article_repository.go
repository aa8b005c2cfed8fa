package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digkill/PromptLibrary/internal/models"
)

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

const articleColumns = `id, title, COALESCE(summary, ''), content, category, COALESCE(cover_url, ''), is_published, published_at, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	var category string
	var publishedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.Title, &a.Summary, &a.Content, &category, &a.CoverURL, &a.IsPublished, &publishedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Category = models.ArticleCategory(category)
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	return &a, nil
}

// List returns articles newest first. An empty category matches all.
func (r *ArticleRepository) List(ctx context.Context, publishedOnly bool, category models.ArticleCategory) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE (? = 0 OR is_published = 1) AND (? = '' OR category = ?)
ORDER BY COALESCE(published_at, created_at) DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, boolInt(publishedOnly), string(category), string(category))
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`
	a, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

func (r *ArticleRepository) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	const query = `
INSERT INTO articles (title, summary, content, category, cover_url, is_published, published_at)
VALUES (?, NULLIF(?, ''), ?, ?, NULLIF(?, ''), ?, ?)`
	res, err := r.db.ExecContext(ctx, query, a.Title, a.Summary, a.Content, string(a.Category), a.CoverURL, boolInt(a.IsPublished), nullTime(a.PublishedAt))
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("article last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *ArticleRepository) Update(ctx context.Context, a *models.Article) (*models.Article, error) {
	const query = `
UPDATE articles
SET title = ?, summary = NULLIF(?, ''), content = ?, category = ?, cover_url = NULLIF(?, ''), is_published = ?, published_at = ?, updated_at = NOW()
WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, a.Title, a.Summary, a.Content, string(a.Category), a.CoverURL, boolInt(a.IsPublished), nullTime(a.PublishedAt), a.ID); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return r.GetByID(ctx, a.ID)
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}
