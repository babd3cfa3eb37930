package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/saasbase/internal/pkg/env"
	"github.com/ManuelReschke/saasbase/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
	}

	group := app.Group("", csrf.New(csrfConf))
	group.Get("/", h.deps.Landing.HandleIndex)
	group.Get("/login", h.deps.Auth.HandleLogin)
	group.Post("/logout", middleware.RequireAuth, h.deps.Auth.HandleLogout)
	group.Get("/dashboard", middleware.RequireAuth, h.deps.Dashboard.HandleDashboard)
}
