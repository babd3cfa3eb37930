package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/saasbase/app/models"
	"github.com/ManuelReschke/saasbase/internal/pkg/billing"
	"github.com/ManuelReschke/saasbase/internal/pkg/metrics"
)

// BillingEvents records provider webhooks and applies them to local state.
type BillingEvents interface {
	RecordWebhookEvent(ctx context.Context, in billing.WebhookEventInput) (bool, *models.BillingWebhookEvent, error)
	ApplySubscriptionChange(ctx context.Context, change billing.SubscriptionChange) (string, error)
	MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error
}

type BillingController struct {
	events        BillingEvents
	webhookSecret string
}

func NewBillingController(events BillingEvents, webhookSecret string) *BillingController {
	return &BillingController{events: events, webhookSecret: webhookSecret}
}

// HandleStripeWebhook verifies and applies customer.subscription.* events.
// Non-2xx answers make Stripe redeliver, so only retryable failures use 5xx.
func (bc *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)

	ev, err := billing.VerifyStripeWebhook(rawBody, c.Get("Stripe-Signature"), bc.webhookSecret)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.ResultRejected).Inc()
		log.Printf("[Billing] Rejected webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 15*time.Second)
	defer cancel()

	process, stored, err := bc.events.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: ev.ID,
		EventType:       string(ev.Type),
		PayloadJSON:     string(rawBody),
	})
	if err != nil {
		log.Printf("[Billing] Persisting webhook %s failed: %v", ev.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !process {
		metrics.WebhookEvents.WithLabelValues(metrics.ResultDuplicate).Inc()
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !billing.IsSubscriptionEvent(string(ev.Type)) {
		metrics.WebhookEvents.WithLabelValues(metrics.ResultIgnored).Inc()
		_ = bc.events.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	change, err := billing.SubscriptionChangeFromEvent(ev)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.ResultFailed).Inc()
		_ = bc.events.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	plan, err := bc.events.ApplySubscriptionChange(ctx, *change)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.ResultFailed).Inc()
		log.Printf("[Billing] Applying subscription %s failed: %v", change.SubscriptionID, err)
		_ = bc.events.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "plan_update_failed"})
	}
	if err := bc.events.MarkWebhookProcessed(ctx, stored.ID, nil); err != nil {
		log.Printf("[Billing] Marking webhook %s processed failed: %v", ev.ID, err)
	}

	metrics.WebhookEvents.WithLabelValues(metrics.ResultProcessed).Inc()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "plan": plan})
}
