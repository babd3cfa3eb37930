package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/ManuelReschke/saasbase/app/repository"
	"github.com/ManuelReschke/saasbase/internal/pkg/usercontext"
	"github.com/ManuelReschke/saasbase/internal/pkg/utils"
	"github.com/ManuelReschke/saasbase/internal/pkg/viewmodel"
	"github.com/ManuelReschke/saasbase/views"
)

type DashboardController struct {
	users    repository.UserRepository
	sessions *session.Store
}

func NewDashboardController(users repository.UserRepository, sessions *session.Store) *DashboardController {
	return &DashboardController{users: users, sessions: sessions}
}

// HandleDashboard shows the signed-in user's account. The plan is read from
// the store since billing webhooks change it outside the session.
func (dc *DashboardController) HandleDashboard(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	user, err := dc.users.GetByID(c.UserContext(), uc.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Session outlived its user row.
			if sess, serr := dc.sessions.Get(c); serr == nil {
				_ = sess.Destroy()
			}
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		log.Printf("[Dashboard] Loading user %s failed: %v", uc.UserID, err)
		return fiber.ErrInternalServerError
	}

	if user.Plan != uc.Plan {
		if sess, err := dc.sessions.Get(c); err == nil {
			sess.Set(usercontext.KeyPlan, user.Plan)
			if err := sess.Save(); err != nil {
				log.Printf("[Dashboard] Caching plan in session failed: %v", err)
			}
		}
		uc.Plan = user.Plan
		usercontext.Set(c, uc)
	}

	return render(c, "Dashboard", views.Dashboard(viewmodel.Dashboard{
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: utils.GetGravatarURL(user.Email, 80),
		Plan:      user.Plan,
		IsPaid:    user.HasPaidPlan(),
		CreatedAt: user.CreatedAt.Format("January 2, 2006"),
	}))
}
