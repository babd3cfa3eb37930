package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/saasbase/internal/pkg/middleware"
)

type HttpRouter struct {
	deps Dependencies
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Signature-verified, no session and no CSRF.
	app.Post("/webhooks/stripe", h.deps.Billing.HandleStripeWebhook)

	// Apply UserContext middleware globally for the web routes below
	app.Use(middleware.UserContext(h.deps.Sessions))

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}
