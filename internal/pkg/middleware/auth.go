package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/saasbase/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in web session; redirects to /login if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Redirect("/login?next="+c.Path(), fiber.StatusSeeOther)
	}
	return c.Next()
}
