package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/ManuelReschke/saasbase/app/models"
	"gorm.io/gorm"
)

// Service applies billing provider events to local state.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordWebhookEvent persists webhook payloads idempotently. It reports
// whether the event still needs processing: false for redeliveries of an
// event that already completed.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(ctx, event)
	if err != nil {
		return false, nil, err
	}
	// A stored event whose earlier attempt failed is retried.
	return created || !stored.IsProcessed(), stored, nil
}

// ApplySubscriptionChange writes the plan derived from a subscription event
// to the user owning the billing customer and returns it. Events are applied
// in the order they occurred at the provider, not the order they arrive: a
// change older than the one already stored is skipped.
func (s *Service) ApplySubscriptionChange(ctx context.Context, change SubscriptionChange) (string, error) {
	customerID := strings.TrimSpace(change.CustomerID)
	if customerID == "" {
		return "", errors.New("customer id is required")
	}

	occurredAt := change.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	plan := PlanForSubscription(change)
	rows, err := s.repo.UpdateUserPlanByCustomerID(ctx, customerID, plan, occurredAt)
	if err != nil {
		return "", err
	}
	if rows == 0 {
		// Unknown customer, or a newer event already set the plan; neither is
		// an error for the provider.
		log.Printf("[Billing] No user row updated for customer %s (plan=%s, occurred=%s)", customerID, plan, occurredAt.UTC().Format(time.RFC3339))
	}
	return plan, nil
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookEventID, errMsg)
}
