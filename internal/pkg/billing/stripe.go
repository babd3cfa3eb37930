package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/ManuelReschke/saasbase/internal/pkg/env"
)

// StripeClient wraps a per-process Stripe API client. It is safe for
// concurrent use.
type StripeClient struct {
	api *client.API
}

// NewStripeClient creates a client for the given secret key. A nil backends
// value uses the default Stripe endpoints.
func NewStripeClient(secretKey string, backends *stripe.Backends) *StripeClient {
	return &StripeClient{api: client.New(strings.TrimSpace(secretKey), backends)}
}

func NewStripeClientFromEnv() *StripeClient {
	return NewStripeClient(env.GetEnv("STRIPE_SECRET_KEY", ""), nil)
}

// CustomerIdempotencyKey derives the key that makes repeated or concurrent
// customer creation for one identity resolve to the same Stripe customer.
func CustomerIdempotencyKey(externalID string) string {
	return "customer-create-" + strings.TrimSpace(externalID)
}

// CreateCustomer creates a Stripe customer and returns its id.
func (s *StripeClient) CreateCustomer(ctx context.Context, externalID, email, name string) (string, error) {
	if strings.TrimSpace(externalID) == "" {
		return "", errors.New("external id is required")
	}
	if strings.TrimSpace(email) == "" {
		return "", errors.New("email is required")
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("external_id", externalID)
	params.SetIdempotencyKey(CustomerIdempotencyKey(externalID))

	c, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	if c.ID == "" {
		return "", errors.New("stripe create customer returned empty id")
	}
	return c.ID, nil
}

// ListActiveProducts pages through all active products with the default
// price expanded.
func (s *StripeClient) ListActiveProducts(ctx context.Context) ([]Product, error) {
	params := &stripe.ProductListParams{
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.AddExpand("data.default_price")

	var out []Product
	it := s.api.Products.List(params)
	for it.Next() {
		out = append(out, productFromStripe(it.Product()))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe list products: %w", err)
	}
	return out, nil
}

func productFromStripe(p *stripe.Product) Product {
	out := Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Metadata:    p.Metadata,
	}
	// An unexpanded default price only carries its id and cannot be shown.
	if dp := p.DefaultPrice; dp != nil && dp.Currency != "" {
		price := &Price{
			ID:         dp.ID,
			UnitAmount: dp.UnitAmount,
			Currency:   string(dp.Currency),
		}
		if dp.Recurring != nil {
			price.Interval = string(dp.Recurring.Interval)
		}
		out.Price = price
	}
	return out
}
