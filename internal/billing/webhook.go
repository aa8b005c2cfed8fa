package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/digkill/PromptLibrary/internal/models"
)

// MaxPayloadBytes bounds a webhook body.
const MaxPayloadBytes = int64(65536)

// Kind is what a webhook means for the subscription mirror.
type Kind string

const (
	KindCheckoutCompleted   Kind = "checkout_completed"
	KindSubscriptionUpdated Kind = "subscription_updated"
	KindSubscriptionDeleted Kind = "subscription_deleted"
	KindInvoiceSucceeded    Kind = "invoice_succeeded"
	KindInvoiceFailed       Kind = "invoice_failed"
	KindIgnored             Kind = "ignored"
)

var ErrMalformedEvent = errors.New("malformed stripe event")

// Update is a decoded webhook event. UserID is zero when the event carries no
// user metadata and the customer id has to be used instead.
type Update struct {
	EventID    string
	EventType  string
	Kind       Kind
	CustomerID string
	UserID     int64
	Snapshot   Snapshot
	Raw        string
}

// ConstructEvent verifies the Stripe-Signature header and parses the event.
func ConstructEvent(payload []byte, header, secret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// Decode turns a verified event into an Update. Unknown event types decode to
// KindIgnored.
func Decode(ev stripe.Event) (Update, error) {
	upd := Update{EventID: ev.ID, EventType: string(ev.Type), Kind: KindIgnored}
	if ev.Data == nil {
		return upd, fmt.Errorf("%w: %s has no data", ErrMalformedEvent, ev.ID)
	}
	upd.Raw = string(ev.Data.Raw)

	switch ev.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return upd, fmt.Errorf("%w: checkout session: %v", ErrMalformedEvent, err)
		}
		upd.Kind = KindCheckoutCompleted
		if sess.Customer != nil {
			upd.CustomerID = sess.Customer.ID
		}
		upd.UserID = parseUserID(sess.Metadata[MetaUserID])
		if upd.UserID == 0 {
			upd.UserID = parseUserID(sess.ClientReferenceID)
		}
		upd.Snapshot = Snapshot{
			CustomerID: upd.CustomerID,
			PriceID:    sess.Metadata[MetaPriceID],
			Status:     stripe.SubscriptionStatusActive,
		}
		if sess.Subscription != nil {
			upd.Snapshot.SubscriptionID = sess.Subscription.ID
		}
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return upd, fmt.Errorf("%w: subscription: %v", ErrMalformedEvent, err)
		}
		upd.Kind = KindSubscriptionUpdated
		if ev.Type == "customer.subscription.deleted" {
			upd.Kind = KindSubscriptionDeleted
		}
		upd.Snapshot = snapshotOf(&sub)
		upd.CustomerID = upd.Snapshot.CustomerID
		upd.UserID = parseUserID(sub.Metadata[MetaUserID])
	case "invoice.payment_succeeded", "invoice.paid", "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return upd, fmt.Errorf("%w: invoice: %v", ErrMalformedEvent, err)
		}
		upd.Kind = KindInvoiceSucceeded
		if ev.Type == "invoice.payment_failed" {
			upd.Kind = KindInvoiceFailed
		}
		if inv.Customer != nil {
			upd.CustomerID = inv.Customer.ID
		}
		upd.Snapshot.CustomerID = upd.CustomerID
		if inv.Subscription != nil {
			upd.Snapshot.SubscriptionID = inv.Subscription.ID
		}
	}

	if upd.Kind != KindIgnored && upd.CustomerID == "" && upd.UserID == 0 {
		return upd, fmt.Errorf("%w: %s carries neither customer nor user", ErrMalformedEvent, ev.ID)
	}
	return upd, nil
}

// MapStatus folds Stripe's subscription statuses onto the four the app knows.
func MapStatus(s stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.StatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.StatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return models.StatusCanceled
	default:
		return models.StatusInactive
	}
}

func parseUserID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
