package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserStartsOnNonePlan(t *testing.T) {
	u, err := NewUser("9f1c2b5e-8a34-4c1e-9d8e-6f1a2b3c4d5e", "Ada Lovelace", "ada@example.com", "cus_123")
	require.NoError(t, err)

	assert.Equal(t, PlanNone, u.Plan)
	assert.False(t, u.HasPaidPlan())
	assert.Equal(t, "cus_123", u.BillingCustomerID)
}

func TestNewUserRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		email      string
		customerID string
	}{
		{name: "bad id", id: "not-a-uuid", email: "ada@example.com", customerID: "cus_1"},
		{name: "bad email", id: "9f1c2b5e-8a34-4c1e-9d8e-6f1a2b3c4d5e", email: "nope", customerID: "cus_1"},
		{name: "missing customer", id: "9f1c2b5e-8a34-4c1e-9d8e-6f1a2b3c4d5e", email: "ada@example.com", customerID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.id, "Ada", tt.email, tt.customerID)
			assert.Error(t, err)
		})
	}
}

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, ValidateProfile("Ada", "ada@example.com"))

	long := strings.Repeat("a", 195) + "@example.com"
	assert.Error(t, ValidateProfile("Ada", long), "email longer than the column")
	assert.Error(t, ValidateProfile("Ada", "not-an-email"))
	assert.Error(t, ValidateProfile("", "ada@example.com"))
	assert.Error(t, ValidateProfile(strings.Repeat("x", 151), "ada@example.com"))
}

func TestBillingWebhookEventIsProcessed(t *testing.T) {
	ev := &BillingWebhookEvent{}
	assert.False(t, ev.IsProcessed())

	now := ev.CreatedAt
	ev.ProcessedAt = &now
	assert.True(t, ev.IsProcessed())

	ev.ProcessingError = "boom"
	assert.False(t, ev.IsProcessed())
}
