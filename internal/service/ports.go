package service

import (
	"context"

	"github.com/digkill/PromptLibrary/internal/models"
)

// Storage ports implemented by internal/repository. Lookups return nil, nil
// when the row does not exist.

type UserStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
}

type SubscriptionStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Subscription, error)
	GetByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error)
	Upsert(ctx context.Context, s *models.Subscription) error
}

type PromptStore interface {
	ListCatalog(ctx context.Context) ([]models.Prompt, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Prompt, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Prompt, error)
	GetByID(ctx context.Context, id string) (*models.Prompt, error)
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
	Upsert(ctx context.Context, p *models.Prompt) (*models.Prompt, error)
	Delete(ctx context.Context, id string) error
}

type FavoriteStore interface {
	List(ctx context.Context, userID int64) ([]string, error)
	Add(ctx context.Context, userID int64, promptID string) error
	Remove(ctx context.Context, userID int64, promptID string) error
}

type FolderStore interface {
	List(ctx context.Context, userID int64) ([]models.FavoriteFolder, error)
	Get(ctx context.Context, userID int64, id string) (*models.FavoriteFolder, error)
	FindByName(ctx context.Context, userID int64, name string) (*models.FavoriteFolder, error)
	Save(ctx context.Context, f *models.FavoriteFolder) (*models.FavoriteFolder, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type ArticleStore interface {
	List(ctx context.Context, publishedOnly bool, category models.ArticleCategory) ([]models.Article, error)
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) (*models.Article, error)
	Delete(ctx context.Context, id int64) error
}

type PlanStore interface {
	List(ctx context.Context) ([]models.Plan, error)
	GetByID(ctx context.Context, id int64) (*models.Plan, error)
	GetByStripePrice(ctx context.Context, priceID string) (*models.Plan, error)
	GetActiveByType(ctx context.Context, planType models.PlanType) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	Delete(ctx context.Context, id int64) error
}

type BillingEventStore interface {
	Record(ctx context.Context, ev *models.BillingEvent) (bool, error)
	Forget(ctx context.Context, stripeEventID string) error
}

// CoverUploader stores an image and returns its public URL.
type CoverUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Announcer tells subscribers about a freshly published article.
type Announcer interface {
	AnnounceArticle(ctx context.Context, a *models.Article) error
}
