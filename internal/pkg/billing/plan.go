package billing

import (
	"strings"

	"github.com/ManuelReschke/saasbase/app/models"
)

func isEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing", "past_due":
		return true
	default:
		return false
	}
}

// PlanForSubscription maps a subscription state to the user's plan column.
// Deleted or non-entitling subscriptions fall back to "none".
func PlanForSubscription(change SubscriptionChange) string {
	if change.Deleted || !isEntitlingStatus(change.Status) {
		return models.PlanNone
	}
	ref := strings.TrimSpace(change.PlanRef)
	if ref == "" {
		return models.PlanNone
	}
	return ref
}
