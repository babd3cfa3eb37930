package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	eventSubscriptionCreated = "customer.subscription.created"
	eventSubscriptionUpdated = "customer.subscription.updated"
	eventSubscriptionDeleted = "customer.subscription.deleted"
)

// ErrInvalidSignature is returned when a webhook payload does not carry a
// valid Stripe-Signature for the configured secret.
var ErrInvalidSignature = errors.New("invalid stripe webhook signature")

// VerifyStripeWebhook checks the signature header and decodes the event.
func VerifyStripeWebhook(payload []byte, signatureHeader, webhookSecret string) (stripe.Event, error) {
	secret := strings.TrimSpace(webhookSecret)
	if secret == "" || strings.TrimSpace(signatureHeader) == "" {
		return stripe.Event{}, ErrInvalidSignature
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return ev, nil
}

// IsSubscriptionEvent reports whether the event type changes a user's plan.
func IsSubscriptionEvent(eventType string) bool {
	switch eventType {
	case eventSubscriptionCreated, eventSubscriptionUpdated, eventSubscriptionDeleted:
		return true
	default:
		return false
	}
}

// SubscriptionChangeFromEvent extracts the customer and plan reference from a
// customer.subscription.* event.
func SubscriptionChangeFromEvent(ev stripe.Event) (*SubscriptionChange, error) {
	eventType := string(ev.Type)
	if !IsSubscriptionEvent(eventType) {
		return nil, fmt.Errorf("unsupported stripe event type: %s", eventType)
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, errors.New("stripe event payload missing data.object")
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	if sub.Customer == nil || strings.TrimSpace(sub.Customer.ID) == "" {
		return nil, errors.New("stripe subscription missing customer id")
	}

	out := &SubscriptionChange{
		CustomerID:     strings.TrimSpace(sub.Customer.ID),
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
		Deleted:        eventType == eventSubscriptionDeleted,
		OccurredAt:     time.Unix(ev.Created, 0).UTC(),
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item == nil || item.Price == nil {
				continue
			}
			if ref := strings.TrimSpace(item.Price.LookupKey); ref != "" {
				out.PlanRef = ref
				break
			}
			if item.Price.Product != nil && item.Price.Product.ID != "" {
				out.PlanRef = item.Price.Product.ID
				break
			}
		}
	}
	return out, nil
}
