package billing

import "time"

// Price is the default price attached to a catalog product, in minor units.
type Price struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval,omitempty"`
}

// Product is the provider-neutral shape of an active catalog entry.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Price       *Price            `json:"price,omitempty"`
}

// SubscriptionChange is the normalized payload of a subscription webhook.
type SubscriptionChange struct {
	CustomerID     string
	SubscriptionID string
	Status         string
	PlanRef        string
	Deleted        bool
	OccurredAt     time.Time
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
}
