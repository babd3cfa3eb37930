package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/saasbase/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the controllers and stores built once in main.
type Dependencies struct {
	Sessions  *session.Store
	Auth      *controllers.AuthController
	Landing   *controllers.LandingController
	Dashboard *controllers.DashboardController
	Billing   *controllers.BillingController
	// MetricsUsers guards /metrics and /monitor. Empty disables both.
	MetricsUsers map[string]string
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// Ops and webhook routes come first so they never touch the app session.
	setup(app, NewOpsRouter(deps.MetricsUsers), NewHttpRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
