package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/digkill/PromptLibrary/internal/models"
)

const maxCoverBytes = 5 << 20

type ArticleInput struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Category string `json:"category"`
	CoverURL string `json:"coverUrl"`
}

func (in ArticleInput) validate() (models.ArticleCategory, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return "", fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	switch category := models.ArticleCategory(in.Category); category {
	case models.ArticleNews, models.ArticleTips:
		return category, nil
	default:
		return "", fmt.Errorf("%w: unknown article category %q", ErrInvalidInput, in.Category)
	}
}

// ArticleService publishes editorial content. The uploader and announcer are
// optional.
type ArticleService struct {
	articles  ArticleStore
	uploader  CoverUploader
	announcer Announcer
	log       *slog.Logger
	now       func() time.Time
}

func NewArticleService(articles ArticleStore, uploader CoverUploader, announcer Announcer, log *slog.Logger) *ArticleService {
	return &ArticleService{
		articles:  articles,
		uploader:  uploader,
		announcer: announcer,
		log:       log,
		now:       time.Now,
	}
}

func parseArticleCategory(raw string) (models.ArticleCategory, error) {
	switch c := models.ArticleCategory(strings.TrimSpace(raw)); c {
	case "", "all":
		return "", nil
	case models.ArticleNews, models.ArticleTips:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown article category %q", ErrInvalidInput, raw)
	}
}

func requireArticles(acct Account) error {
	if acct.IsGuest() {
		return ErrUnauthorized
	}
	if !acct.Permissions.CanViewArticles {
		return ErrForbidden
	}
	return nil
}

// ListPublished returns published articles, optionally of one category.
func (s *ArticleService) ListPublished(ctx context.Context, acct Account, category string) ([]models.Article, error) {
	if err := requireArticles(acct); err != nil {
		return nil, err
	}
	c, err := parseArticleCategory(category)
	if err != nil {
		return nil, err
	}
	return s.articles.List(ctx, true, c)
}

func (s *ArticleService) GetPublished(ctx context.Context, acct Account, id int64) (*models.Article, error) {
	if err := requireArticles(acct); err != nil {
		return nil, err
	}
	a, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsPublished {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *ArticleService) List(ctx context.Context, category string) ([]models.Article, error) {
	c, err := parseArticleCategory(category)
	if err != nil {
		return nil, err
	}
	return s.articles.List(ctx, false, c)
}

func (s *ArticleService) Get(ctx context.Context, id int64) (*models.Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// Create stores a draft.
func (s *ArticleService) Create(ctx context.Context, input ArticleInput) (*models.Article, error) {
	category, err := input.validate()
	if err != nil {
		return nil, err
	}
	return s.articles.Create(ctx, &models.Article{
		Title:    strings.TrimSpace(input.Title),
		Summary:  strings.TrimSpace(input.Summary),
		Content:  input.Content,
		Category: category,
		CoverURL: strings.TrimSpace(input.CoverURL),
	})
}

func (s *ArticleService) Update(ctx context.Context, id int64, input ArticleInput) (*models.Article, error) {
	category, err := input.validate()
	if err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Title = strings.TrimSpace(input.Title)
	a.Summary = strings.TrimSpace(input.Summary)
	a.Content = input.Content
	a.Category = category
	if cover := strings.TrimSpace(input.CoverURL); cover != "" {
		a.CoverURL = cover
	}
	return s.articles.Update(ctx, a)
}

func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.articles.Delete(ctx, id)
}

// Publish makes the article visible. PublishedAt is set on the first publish
// only, and only that first publish is announced.
func (s *ArticleService) Publish(ctx context.Context, id int64) (*models.Article, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.IsPublished {
		return a, nil
	}
	firstPublish := a.PublishedAt == nil
	a.IsPublished = true
	if firstPublish {
		now := s.now().UTC()
		a.PublishedAt = &now
	}
	updated, err := s.articles.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	if firstPublish && s.announcer != nil {
		if err := s.announcer.AnnounceArticle(ctx, updated); err != nil {
			s.log.Warn("announce article failed", "article_id", updated.ID, "err", err)
		}
	}
	return updated, nil
}

func (s *ArticleService) Unpublish(ctx context.Context, id int64) (*models.Article, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsPublished {
		return a, nil
	}
	a.IsPublished = false
	return s.articles.Update(ctx, a)
}

// UploadCover stores the image and points the article at it.
func (s *ArticleService) UploadCover(ctx context.Context, id int64, data []byte, contentType string) (*models.Article, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: cover storage is not configured", ErrInvalidInput)
	}
	if len(data) == 0 || len(data) > maxCoverBytes {
		return nil, fmt.Errorf("%w: cover must be between 1 byte and %d bytes", ErrInvalidInput, maxCoverBytes)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: cover must be an image", ErrInvalidInput)
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.uploader.Upload(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload cover: %w", err)
	}
	a.CoverURL = url
	return s.articles.Update(ctx, a)
}
