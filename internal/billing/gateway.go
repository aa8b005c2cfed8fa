// Package billing talks to Stripe: checkout and portal sessions, subscription
// lookups and webhook decoding. Nothing here touches the database.
package billing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Metadata keys set on checkout sessions and the subscriptions they create.
const (
	MetaUserID   = "user_id"
	MetaPlanType = "plan_type"
	MetaPriceID  = "price_id"
)

type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	UserID     int64
	PlanType   string
	SuccessURL string
	CancelURL  string
}

// Snapshot is the part of a Stripe subscription the app mirrors.
type Snapshot struct {
	SubscriptionID    string
	CustomerID        string
	PriceID           string
	Status            stripe.SubscriptionStatus
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	CancelAtPeriodEnd bool
}

// Gateway is the Stripe surface the billing service needs.
type Gateway interface {
	CreateCustomer(ctx context.Context, email string, userID int64) (string, error)
	CheckoutURL(ctx context.Context, req CheckoutRequest) (string, error)
	PortalURL(ctx context.Context, customerID, returnURL string) (string, error)
	LatestSubscription(ctx context.Context, customerID string) (*Snapshot, error)
}

// StripeGateway implements Gateway with a per-instance API client rather than
// the package-level stripe.Key.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email string, userID int64) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			MetaUserID: strconv.FormatInt(userID, 10),
		},
	}
	params.Context = ctx
	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cust.ID, nil
}

func (g *StripeGateway) CheckoutURL(ctx context.Context, req CheckoutRequest) (string, error) {
	meta := map[string]string{
		MetaUserID:   strconv.FormatInt(req.UserID, 10),
		MetaPlanType: req.PlanType,
		MetaPriceID:  req.PriceID,
	}
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(req.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(strconv.FormatInt(req.UserID, 10)),
		SuccessURL:        stripe.String(req.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: meta,
		},
	}
	params.Metadata = meta
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (g *StripeGateway) PortalURL(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	sess, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

// LatestSubscription returns the customer's most recently created
// subscription in any status, or nil when there is none.
func (g *StripeGateway) LatestSubscription(ctx context.Context, customerID string) (*Snapshot, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(10)

	var latest *stripe.Subscription
	it := g.api.Subscriptions.List(params)
	for it.Next() {
		sub := it.Subscription()
		if latest == nil || sub.Created > latest.Created {
			latest = sub
		}
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if latest == nil {
		return nil, nil
	}
	snap := snapshotOf(latest)
	return &snap, nil
}

func snapshotOf(sub *stripe.Subscription) Snapshot {
	snap := Snapshot{
		SubscriptionID:    sub.ID,
		Status:            sub.Status,
		PeriodStart:       unixTime(sub.CurrentPeriodStart),
		PeriodEnd:         unixTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		PriceID:           sub.Metadata[MetaPriceID],
	}
	if sub.Customer != nil {
		snap.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item != nil && item.Price != nil && item.Price.ID != "" {
				snap.PriceID = item.Price.ID
				break
			}
		}
	}
	return snap
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
