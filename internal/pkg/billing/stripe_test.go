package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func newTestStripeClient(t *testing.T, handler http.HandlerFunc) *StripeClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeClient("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestStripeClientCreateCustomer(t *testing.T) {
	var gotIdempotency string
	c := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/customers", r.URL.Path)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "ada@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "Ada Lovelace", r.PostForm.Get("name"))
		assert.Equal(t, "idp-42", r.PostForm.Get("metadata[external_id]"))
		gotIdempotency = r.Header.Get("Idempotency-Key")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cus_test_1","object":"customer","email":"ada@example.com"}`))
	})

	id, err := c.CreateCustomer(context.Background(), "idp-42", "ada@example.com", "Ada Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "cus_test_1", id)
	assert.Equal(t, CustomerIdempotencyKey("idp-42"), gotIdempotency)
}

func TestStripeClientCreateCustomerProviderError(t *testing.T) {
	c := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad email"}}`))
	})

	_, err := c.CreateCustomer(context.Background(), "idp-42", "ada@example.com", "Ada")
	require.Error(t, err)
}

func TestStripeClientCreateCustomerValidatesInput(t *testing.T) {
	c := NewStripeClient("sk_test_123", nil)

	_, err := c.CreateCustomer(context.Background(), "", "ada@example.com", "Ada")
	assert.Error(t, err)
	_, err = c.CreateCustomer(context.Background(), "idp-1", " ", "Ada")
	assert.Error(t, err)
}

func TestStripeClientListActiveProducts(t *testing.T) {
	c := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/products", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		assert.Equal(t, "data.default_price", r.URL.Query().Get("expand[0]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"url": "/v1/products",
			"has_more": false,
			"data": [
				{
					"id": "prod_basic",
					"object": "product",
					"name": "Basic",
					"description": "For individuals",
					"metadata": {"features": "[\"1 project\"]"},
					"default_price": {
						"id": "price_basic",
						"object": "price",
						"currency": "usd",
						"unit_amount": 900,
						"recurring": {"interval": "month"}
					}
				},
				{
					"id": "prod_enterprise",
					"object": "product",
					"name": "Enterprise",
					"description": "",
					"metadata": {}
				}
			]
		}`))
	})

	products, err := c.ListActiveProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "prod_basic", products[0].ID)
	require.NotNil(t, products[0].Price)
	assert.Equal(t, int64(900), products[0].Price.UnitAmount)
	assert.Equal(t, "usd", products[0].Price.Currency)
	assert.Equal(t, "month", products[0].Price.Interval)
	assert.Equal(t, `["1 project"]`, products[0].Metadata["features"])

	assert.Equal(t, "Enterprise", products[1].Name)
	assert.Nil(t, products[1].Price)
}

func TestProductFromStripeIgnoresUnexpandedPrice(t *testing.T) {
	p := productFromStripe(&stripe.Product{
		ID:           "prod_1",
		Name:         "Pro",
		DefaultPrice: &stripe.Price{ID: "price_1"},
	})
	assert.Nil(t, p.Price)
}
