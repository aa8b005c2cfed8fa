package models

import (
	"strings"
	"time"
)

type PlanType string

const (
	PlanFree     PlanType = "free"
	PlanStandard PlanType = "standard"
	PlanPremium  PlanType = "premium"
)

// NormalizePlanType maps a stored plan marker onto the enum. Legacy rows only
// carry is_premium; unknown strings degrade to free.
func NormalizePlanType(raw string, isPremium bool) PlanType {
	switch PlanType(strings.ToLower(strings.TrimSpace(raw))) {
	case PlanFree:
		return PlanFree
	case PlanStandard:
		return PlanStandard
	case PlanPremium:
		return PlanPremium
	case "":
		if isPremium {
			return PlanPremium
		}
		return PlanFree
	default:
		return PlanFree
	}
}

type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusInactive SubscriptionStatus = "inactive"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusPastDue  SubscriptionStatus = "past_due"
)

type ArticleCategory string

const (
	ArticleNews ArticleCategory = "news"
	ArticleTips ArticleCategory = "tips"
)

type Prompt struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	UseCase   []string  `json:"useCase"`
	Tags      []string  `json:"tags"`
	Usage     string    `json:"usage,omitempty"`
	Example   string    `json:"example,omitempty"`
	PlanType  PlanType  `json:"planType"`
	IsPremium bool      `json:"isPremium"`
	OwnerID   *int64    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsCustom reports whether the prompt was authored by an end user.
func (p Prompt) IsCustom() bool {
	return p.OwnerID != nil
}

type FavoriteFolder struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	PromptIDs []string  `json:"promptIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Article struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Content     string          `json:"content"`
	Category    ArticleCategory `json:"category"`
	CoverURL    string          `json:"coverUrl,omitempty"`
	IsPublished bool            `json:"isPublished"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// UsageHistoryItem is one day-bucket of copy events for a prompt.
// Timestamp is epoch milliseconds.
type UsageHistoryItem struct {
	PromptID  string `json:"promptId"`
	Timestamp int64  `json:"timestamp"`
	Count     int    `json:"count"`
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Subscription mirrors the payment processor's view of a user's plan.
type Subscription struct {
	UserID               int64              `json:"userId"`
	StripeCustomerID     string             `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string             `json:"stripeSubscriptionId,omitempty"`
	PlanType             PlanType           `json:"planType"`
	Status               SubscriptionStatus `json:"status"`
	CurrentPeriodStart   *time.Time         `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd     *time.Time         `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd    bool               `json:"cancelAtPeriodEnd"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// Plan is a purchasable pricing tier mapped to a Stripe price.
type Plan struct {
	ID              int64     `json:"id"`
	PlanType        PlanType  `json:"planType"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Currency        string    `json:"currency"`
	PriceMinorUnits int       `json:"priceMinorUnits"`
	StripePriceID   string    `json:"stripePriceId"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// BillingEvent records a processed webhook delivery.
type BillingEvent struct {
	ID            int64
	StripeEventID string
	Type          string
	CustomerID    string
	RawPayload    string
	CreatedAt     time.Time
}
