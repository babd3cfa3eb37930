package controllers

import (
	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/saasbase/internal/pkg/usercontext"
	"github.com/ManuelReschke/saasbase/internal/pkg/viewmodel"
	"github.com/ManuelReschke/saasbase/views"
)

// render wraps body in the shared layout and writes it as HTML.
func render(c *fiber.Ctx, title string, body templ.Component) error {
	uc := usercontext.GetUserContext(c)
	csrfToken, _ := c.Locals("csrf").(string)
	page := views.Layout(viewmodel.Layout{
		Title:      title,
		IsLoggedIn: uc.IsLoggedIn,
		Username:   uc.Username,
		Plan:       uc.Plan,
		CSRF:       csrfToken,
		Msg:        flash.Get(c),
	}, body)

	return adaptor.HTTPHandler(templ.Handler(page))(c)
}
