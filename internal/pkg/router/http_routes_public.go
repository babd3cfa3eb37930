package router

import (
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	auth := h.deps.Auth

	// Must precede /auth/:provider.
	app.Get("/auth/auth-code-error", auth.HandleAuthError)

	// Social OAuth
	app.Get("/auth/:provider/callback", auth.HandleCallback)
	app.Get("/auth/:provider", auth.HandleBegin)
}
