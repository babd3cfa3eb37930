package router

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/saasbase/internal/pkg/metrics"
)

// OpsRouter exposes prometheus metrics and the fiber monitor behind basic auth.
type OpsRouter struct {
	users map[string]string
}

func NewOpsRouter(users map[string]string) *OpsRouter {
	return &OpsRouter{users: users}
}

func (o OpsRouter) InstallRouter(app *fiber.App) {
	if len(o.users) == 0 {
		log.Println("[Router] METRICS_PASSWORD not set, /metrics and /monitor are disabled")
		return
	}
	auth := basicauth.New(basicauth.Config{Users: o.users})

	app.Get("/metrics", auth, metrics.Handler())
	app.Get("/monitor", auth, monitor.New(monitor.Config{Title: "saasbase monitor"}))
}
