package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/saasbase/app/models"
	"github.com/ManuelReschke/saasbase/internal/pkg/usercontext"
)

// UserContext loads the logged-in user from the app session into Locals on
// every request. Goth keeps its own session on /auth/*, so those paths are
// left alone.
func UserContext(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/auth/") {
			return c.Next()
		}

		sess, err := store.Get(c)
		if err != nil {
			log.Printf("[Session] Load failed, continuing anonymous: %v", err)
			usercontext.Set(c, usercontext.UserContext{Plan: models.PlanNone})
			return c.Next()
		}

		userID, _ := sess.Get(usercontext.KeyUserID).(string)
		if userID == "" {
			usercontext.Set(c, usercontext.UserContext{Plan: models.PlanNone})
			return c.Next()
		}

		username, _ := sess.Get(usercontext.KeyUsername).(string)
		plan, _ := sess.Get(usercontext.KeyPlan).(string)
		if plan == "" {
			plan = models.PlanNone
		}
		usercontext.Set(c, usercontext.UserContext{
			UserID:     userID,
			Username:   username,
			IsLoggedIn: true,
			Plan:       plan,
		})
		return c.Next()
	}
}
