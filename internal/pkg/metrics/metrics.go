package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the app's collectors, kept apart from the global default
// registry so tests can read counters in isolation.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// UserProvisioning counts login callbacks by provisioning outcome.
	UserProvisioning = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saasbase",
		Name:      "user_provisioning_total",
		Help:      "Login callbacks partitioned by provisioning outcome.",
	}, []string{"result"})

	// CatalogCache counts catalog lookups by cache outcome.
	CatalogCache = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saasbase",
		Name:      "catalog_cache_total",
		Help:      "Catalog lookups partitioned by cache outcome.",
	}, []string{"result"})

	// WebhookEvents counts billing webhook deliveries.
	WebhookEvents = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saasbase",
		Name:      "billing_webhook_events_total",
		Help:      "Billing webhook deliveries partitioned by outcome.",
	}, []string{"result"})
)

// Outcome labels shared by the counters above.
const (
	ResultCreated   = "created"
	ResultExisting  = "existing"
	ResultFailed    = "failed"
	ResultRejected  = "rejected"
	ResultDuplicate = "duplicate"
	ResultProcessed = "processed"
	ResultIgnored   = "ignored"
	ResultHit       = "hit"
	ResultMiss      = "miss"
	ResultError     = "error"
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
