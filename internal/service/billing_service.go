package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/digkill/PromptLibrary/internal/billing"
	"github.com/digkill/PromptLibrary/internal/models"
)

// BillingService keeps the subscription mirror in step with Stripe. The
// gateway is nil when Stripe is not configured.
type BillingService struct {
	gateway     billing.Gateway
	subs        SubscriptionStore
	plans       *PlanService
	events      BillingEventStore
	frontendURL string
	log         *slog.Logger
}

func NewBillingService(gateway billing.Gateway, subs SubscriptionStore, plans *PlanService, events BillingEventStore, frontendURL string, log *slog.Logger) *BillingService {
	return &BillingService{
		gateway:     gateway,
		subs:        subs,
		plans:       plans,
		events:      events,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

func (s *BillingService) Enabled() bool {
	return s.gateway != nil
}

// Checkout starts a Stripe Checkout session for a paid tier and returns its
// URL.
func (s *BillingService) Checkout(ctx context.Context, acct Account, planType string) (string, error) {
	if !s.Enabled() {
		return "", ErrBillingDisabled
	}
	if acct.IsGuest() {
		return "", ErrUnauthorized
	}
	plan, err := s.plans.CheckoutPlan(ctx, planType)
	if err != nil {
		return "", err
	}
	customerID, err := s.ensureCustomer(ctx, acct)
	if err != nil {
		return "", err
	}
	return s.gateway.CheckoutURL(ctx, billing.CheckoutRequest{
		CustomerID: customerID,
		PriceID:    plan.StripePriceID,
		UserID:     acct.UserID(),
		PlanType:   string(plan.PlanType),
		SuccessURL: s.frontendURL + "/billing/success",
		CancelURL:  s.frontendURL + "/pricing",
	})
}

// Portal returns a Stripe customer portal URL.
func (s *BillingService) Portal(ctx context.Context, acct Account) (string, error) {
	if !s.Enabled() {
		return "", ErrBillingDisabled
	}
	if acct.IsGuest() {
		return "", ErrUnauthorized
	}
	if acct.Subscription == nil || acct.Subscription.StripeCustomerID == "" {
		return "", fmt.Errorf("%w: no billing account yet", ErrNotFound)
	}
	return s.gateway.PortalURL(ctx, acct.Subscription.StripeCustomerID, s.frontendURL+"/account")
}

// Sync pulls the latest subscription from Stripe and stores it.
func (s *BillingService) Sync(ctx context.Context, acct Account) (*models.Subscription, error) {
	if !s.Enabled() {
		return nil, ErrBillingDisabled
	}
	if acct.IsGuest() {
		return nil, ErrUnauthorized
	}
	current := acct.Subscription
	if current == nil || current.StripeCustomerID == "" {
		return freeSubscription(acct.UserID(), ""), nil
	}
	snap, err := s.gateway.LatestSubscription(ctx, current.StripeCustomerID)
	if err != nil {
		return nil, err
	}
	next := freeSubscription(acct.UserID(), current.StripeCustomerID)
	if snap != nil {
		next, err = s.mirror(ctx, acct.UserID(), *snap)
		if err != nil {
			return nil, err
		}
	}
	if err := s.subs.Upsert(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// HandleEvent applies a webhook update once per Stripe event id. A failed
// update is forgotten so Stripe's retry gets another chance.
func (s *BillingService) HandleEvent(ctx context.Context, upd billing.Update) error {
	if upd.Kind == billing.KindIgnored {
		return nil
	}
	fresh, err := s.events.Record(ctx, &models.BillingEvent{
		StripeEventID: upd.EventID,
		Type:          upd.EventType,
		CustomerID:    upd.CustomerID,
		RawPayload:    upd.Raw,
	})
	if err != nil {
		return err
	}
	if !fresh {
		s.log.Info("duplicate stripe event skipped", "event_id", upd.EventID, "type", upd.EventType)
		return nil
	}
	if err := s.apply(ctx, upd); err != nil {
		if ferr := s.events.Forget(ctx, upd.EventID); ferr != nil {
			s.log.Error("forget billing event failed", "event_id", upd.EventID, "err", ferr)
		}
		return err
	}
	return nil
}

func (s *BillingService) apply(ctx context.Context, upd billing.Update) error {
	current, err := s.findSubscription(ctx, upd)
	if err != nil {
		return err
	}
	userID := upd.UserID
	if userID == 0 && current != nil {
		userID = current.UserID
	}
	if userID == 0 {
		s.log.Warn("stripe event for unknown customer", "event_id", upd.EventID, "customer_id", upd.CustomerID)
		return nil
	}

	var next *models.Subscription
	switch upd.Kind {
	case billing.KindCheckoutCompleted, billing.KindSubscriptionUpdated:
		if superseded(current, upd.Snapshot) && billing.MapStatus(upd.Snapshot.Status) != models.StatusActive {
			s.log.Info("update of superseded subscription ignored", "event_id", upd.EventID, "subscription_id", upd.Snapshot.SubscriptionID)
			return nil
		}
		next, err = s.mirror(ctx, userID, upd.Snapshot)
		if err != nil {
			return err
		}
	case billing.KindSubscriptionDeleted:
		if superseded(current, upd.Snapshot) {
			s.log.Info("deletion of superseded subscription ignored", "event_id", upd.EventID, "subscription_id", upd.Snapshot.SubscriptionID)
			return nil
		}
		next = freeSubscription(userID, upd.CustomerID)
		next.Status = models.StatusCanceled
		next.StripeSubscriptionID = upd.Snapshot.SubscriptionID
		next.CurrentPeriodStart = upd.Snapshot.PeriodStart
		next.CurrentPeriodEnd = upd.Snapshot.PeriodEnd
	case billing.KindInvoiceSucceeded, billing.KindInvoiceFailed:
		if current == nil {
			s.log.Warn("invoice event without subscription mirror", "event_id", upd.EventID, "user_id", userID)
			return nil
		}
		if superseded(current, upd.Snapshot) {
			s.log.Info("invoice of superseded subscription ignored", "event_id", upd.EventID, "subscription_id", upd.Snapshot.SubscriptionID)
			return nil
		}
		next = current
		next.Status = models.StatusActive
		if upd.Kind == billing.KindInvoiceFailed {
			next.Status = models.StatusPastDue
		}
	default:
		return nil
	}
	if next.StripeCustomerID == "" && current != nil {
		next.StripeCustomerID = current.StripeCustomerID
	}
	if err := s.subs.Upsert(ctx, next); err != nil {
		return err
	}
	s.log.Info("subscription mirrored", "event_id", upd.EventID, "type", upd.EventType, "user_id", userID, "plan", next.PlanType, "status", next.Status)
	return nil
}

// superseded reports whether snap belongs to a subscription other than the
// one currently mirrored.
func superseded(current *models.Subscription, snap billing.Snapshot) bool {
	return current != nil && current.StripeSubscriptionID != "" &&
		snap.SubscriptionID != "" && current.StripeSubscriptionID != snap.SubscriptionID
}

// mirror converts a Stripe snapshot into the local record.
func (s *BillingService) mirror(ctx context.Context, userID int64, snap billing.Snapshot) (*models.Subscription, error) {
	planType, err := s.plans.PlanTypeForPrice(ctx, snap.PriceID)
	if err != nil {
		return nil, fmt.Errorf("detect plan tier: %w", err)
	}
	return &models.Subscription{
		UserID:               userID,
		StripeCustomerID:     snap.CustomerID,
		StripeSubscriptionID: snap.SubscriptionID,
		PlanType:             planType,
		Status:               billing.MapStatus(snap.Status),
		CurrentPeriodStart:   snap.PeriodStart,
		CurrentPeriodEnd:     snap.PeriodEnd,
		CancelAtPeriodEnd:    snap.CancelAtPeriodEnd,
	}, nil
}

func (s *BillingService) findSubscription(ctx context.Context, upd billing.Update) (*models.Subscription, error) {
	if upd.UserID != 0 {
		return s.subs.GetByUserID(ctx, upd.UserID)
	}
	if upd.CustomerID == "" {
		return nil, nil
	}
	return s.subs.GetByCustomerID(ctx, upd.CustomerID)
}

func (s *BillingService) ensureCustomer(ctx context.Context, acct Account) (string, error) {
	if acct.Subscription != nil && acct.Subscription.StripeCustomerID != "" {
		return acct.Subscription.StripeCustomerID, nil
	}
	customerID, err := s.gateway.CreateCustomer(ctx, acct.User.Email, acct.UserID())
	if err != nil {
		return "", err
	}
	record := freeSubscription(acct.UserID(), customerID)
	if acct.Subscription != nil {
		copied := *acct.Subscription
		copied.StripeCustomerID = customerID
		record = &copied
	}
	if err := s.subs.Upsert(ctx, record); err != nil {
		return "", err
	}
	return customerID, nil
}

func freeSubscription(userID int64, customerID string) *models.Subscription {
	return &models.Subscription{
		UserID:           userID,
		StripeCustomerID: customerID,
		PlanType:         models.PlanFree,
		Status:           models.StatusInactive,
	}
}

