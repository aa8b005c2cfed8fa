package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/digkill/PromptLibrary/internal/models"
)

// promptRow is the raw shape of a prompts row. Only this file knows about the
// column naming and the JSON-encoded list columns.
type promptRow struct {
	ID        string
	OwnerID   sql.NullInt64
	Title     string
	Content   string
	Category  string
	UseCases  sql.NullString
	Tags      sql.NullString
	Usage     sql.NullString
	Example   sql.NullString
	PlanType  sql.NullString
	IsPremium bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

const promptColumns = `id, owner_id, title, content, category, use_cases, tags, usage_text, example, plan_type, is_premium, created_at, updated_at`

func (r *promptRow) scanTargets() []any {
	return []any{&r.ID, &r.OwnerID, &r.Title, &r.Content, &r.Category, &r.UseCases, &r.Tags, &r.Usage, &r.Example, &r.PlanType, &r.IsPremium, &r.CreatedAt, &r.UpdatedAt}
}

func promptFromRow(r promptRow) models.Prompt {
	p := models.Prompt{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Category:  r.Category,
		UseCase:   decodeList(r.UseCases),
		Tags:      decodeList(r.Tags),
		Usage:     r.Usage.String,
		Example:   r.Example.String,
		PlanType:  models.NormalizePlanType(r.PlanType.String, r.IsPremium),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	p.IsPremium = p.PlanType == models.PlanPremium
	if r.OwnerID.Valid {
		owner := r.OwnerID.Int64
		p.OwnerID = &owner
	}
	return p
}

type folderRow struct {
	ID        string
	UserID    int64
	Name      string
	PromptIDs sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

const folderColumns = `id, user_id, name, prompt_ids, created_at, updated_at`

func (r *folderRow) scanTargets() []any {
	return []any{&r.ID, &r.UserID, &r.Name, &r.PromptIDs, &r.CreatedAt, &r.UpdatedAt}
}

func folderFromRow(r folderRow) models.FavoriteFolder {
	return models.FavoriteFolder{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		PromptIDs: decodeList(r.PromptIDs),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type subscriptionRow struct {
	UserID             int64
	CustomerID         sql.NullString
	SubscriptionID     sql.NullString
	PlanType           string
	Status             string
	CurrentPeriodStart sql.NullTime
	CurrentPeriodEnd   sql.NullTime
	CancelAtPeriodEnd  bool
	UpdatedAt          time.Time
}

const subscriptionColumns = `user_id, stripe_customer_id, stripe_subscription_id, plan_type, status, current_period_start, current_period_end, cancel_at_period_end, updated_at`

func (r *subscriptionRow) scanTargets() []any {
	return []any{&r.UserID, &r.CustomerID, &r.SubscriptionID, &r.PlanType, &r.Status, &r.CurrentPeriodStart, &r.CurrentPeriodEnd, &r.CancelAtPeriodEnd, &r.UpdatedAt}
}

func subscriptionFromRow(r subscriptionRow) models.Subscription {
	s := models.Subscription{
		UserID:               r.UserID,
		StripeCustomerID:     r.CustomerID.String,
		StripeSubscriptionID: r.SubscriptionID.String,
		PlanType:             models.NormalizePlanType(r.PlanType, false),
		Status:               normalizeStatus(r.Status),
		CancelAtPeriodEnd:    r.CancelAtPeriodEnd,
		UpdatedAt:            r.UpdatedAt,
	}
	if r.CurrentPeriodStart.Valid {
		t := r.CurrentPeriodStart.Time
		s.CurrentPeriodStart = &t
	}
	if r.CurrentPeriodEnd.Valid {
		t := r.CurrentPeriodEnd.Time
		s.CurrentPeriodEnd = &t
	}
	return s
}

func normalizeStatus(raw string) models.SubscriptionStatus {
	switch s := models.SubscriptionStatus(raw); s {
	case models.StatusActive, models.StatusCanceled, models.StatusPastDue:
		return s
	default:
		return models.StatusInactive
	}
}

// decodeList reads a JSON string array column. Anything unreadable is an
// empty list.
func decodeList(v sql.NullString) []string {
	out := []string{}
	if !v.Valid || v.String == "" {
		return out
	}
	if err := json.Unmarshal([]byte(v.String), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
