package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/ManuelReschke/saasbase/app/models"
	"github.com/ManuelReschke/saasbase/internal/pkg/billing"
)

const testWebhookSecret = "whsec_test"

type memoryBillingRepo struct {
	mu     sync.Mutex
	events map[string]*models.BillingWebhookEvent
	plans  map[string]string
	planAt map[string]time.Time
	nextID uint
}

func newMemoryBillingRepo() *memoryBillingRepo {
	return &memoryBillingRepo{
		events: map[string]*models.BillingWebhookEvent{},
		plans:  map[string]string{"cus_456": models.PlanNone},
		planAt: map[string]time.Time{},
	}
}

func (m *memoryBillingRepo) CreateWebhookEventIfNotExists(_ context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := event.Provider + "/" + event.ProviderEventID
	if stored, ok := m.events[key]; ok {
		return false, stored, nil
	}
	m.nextID++
	event.ID = m.nextID
	m.events[key] = event
	return true, event, nil
}

func (m *memoryBillingRepo) MarkWebhookProcessed(_ context.Context, id uint, processingError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return errors.New("webhook event not found")
}

func (m *memoryBillingRepo) UpdateUserPlanByCustomerID(_ context.Context, customerID, plan string, occurredAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[customerID]; !ok {
		return 0, nil
	}
	if last, ok := m.planAt[customerID]; ok && occurredAt.Before(last) {
		return 0, nil
	}
	m.plans[customerID] = plan
	m.planAt[customerID] = occurredAt
	return 1, nil
}

func newWebhookApp(repo billing.Repository) *fiber.App {
	app := fiber.New()
	bc := NewBillingController(billing.NewService(repo), testWebhookSecret)
	app.Post("/webhooks/stripe", bc.HandleStripeWebhook)
	return app
}

func stripeEvent(id, eventType, status string) []byte {
	return stripeEventAt(id, eventType, status, 1700000000)
}

func stripeEventAt(id, eventType, status string, created int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": %q,
		"created": %d,
		"api_version": "2023-10-16",
		"data": {"object": {
			"id": "sub_123",
			"object": "subscription",
			"customer": "cus_456",
			"status": %q,
			"items": {"object": "list", "data": [
				{"id": "si_1", "object": "subscription_item", "price": {"id": "price_1", "object": "price", "lookup_key": "pro_monthly", "product": "prod_pro"}}
			]}
		}}
	}`, id, eventType, created, status))
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, secret string) (int, map[string]interface{}) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestStripeWebhookAppliesSubscription(t *testing.T) {
	repo := newMemoryBillingRepo()
	app := newWebhookApp(repo)

	status, body := postWebhook(t, app, stripeEvent("evt_1", "customer.subscription.created", "active"), testWebhookSecret)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "pro_monthly", body["plan"])
	assert.Equal(t, "pro_monthly", repo.plans["cus_456"])
	assert.True(t, repo.events["stripe/evt_1"].IsProcessed())
}

func TestStripeWebhookDeletedResetsPlan(t *testing.T) {
	repo := newMemoryBillingRepo()
	repo.plans["cus_456"] = "pro_monthly"
	app := newWebhookApp(repo)

	status, _ := postWebhook(t, app, stripeEvent("evt_2", "customer.subscription.deleted", "canceled"), testWebhookSecret)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.PlanNone, repo.plans["cus_456"])
}

func TestStripeWebhookOutOfOrderDeliveryKeepsNewestPlan(t *testing.T) {
	repo := newMemoryBillingRepo()
	app := newWebhookApp(repo)

	// The cancellation happened last but is delivered first.
	status, _ := postWebhook(t, app, stripeEventAt("evt_10", "customer.subscription.deleted", "canceled", 1700000100), testWebhookSecret)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = postWebhook(t, app, stripeEventAt("evt_11", "customer.subscription.created", "active", 1700000000), testWebhookSecret)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.PlanNone, repo.plans["cus_456"])
	assert.True(t, repo.events["stripe/evt_11"].IsProcessed())
}

func TestStripeWebhookDuplicateDelivery(t *testing.T) {
	repo := newMemoryBillingRepo()
	app := newWebhookApp(repo)
	payload := stripeEvent("evt_3", "customer.subscription.updated", "active")

	postWebhook(t, app, payload, testWebhookSecret)
	repo.plans["cus_456"] = "changed_elsewhere"

	status, body := postWebhook(t, app, payload, testWebhookSecret)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])
	assert.Equal(t, "changed_elsewhere", repo.plans["cus_456"])
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	repo := newMemoryBillingRepo()
	app := newWebhookApp(repo)

	status, body := postWebhook(t, app, stripeEvent("evt_4", "customer.subscription.created", "active"), "whsec_other")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_signature", body["error"])
	assert.Empty(t, repo.events)
	assert.Equal(t, models.PlanNone, repo.plans["cus_456"])
}

func TestStripeWebhookIgnoresOtherEvents(t *testing.T) {
	repo := newMemoryBillingRepo()
	app := newWebhookApp(repo)

	payload := []byte(`{"id":"evt_5","object":"event","type":"invoice.paid","created":1700000000,"data":{"object":{"id":"in_1","object":"invoice"}}}`)
	status, body := postWebhook(t, app, payload, testWebhookSecret)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ignored"])
	assert.True(t, repo.events["stripe/evt_5"].IsProcessed())
}
