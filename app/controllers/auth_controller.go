package controllers

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/saasbase/app/repository"
	"github.com/ManuelReschke/saasbase/internal/pkg/metrics"
	"github.com/ManuelReschke/saasbase/internal/pkg/provisioning"
	"github.com/ManuelReschke/saasbase/internal/pkg/redirect"
	"github.com/ManuelReschke/saasbase/internal/pkg/usercontext"
	"github.com/ManuelReschke/saasbase/views"
)

// IdentityExchanger trades the authorization code on the callback request
// for the caller's identity.
type IdentityExchanger interface {
	Exchange(c *fiber.Ctx) (provisioning.Identity, error)
}

// UserProvisioner resolves an identity to a local user, creating it on first
// login.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, id provisioning.Identity) (*provisioning.Result, error)
}

type AuthController struct {
	exchanger   IdentityExchanger
	provisioner UserProvisioner
	users       repository.UserRepository
	sessions    *session.Store
	policy      redirect.Policy
	providers   []string
	beginAuth   fiber.Handler
	timeout     time.Duration
}

// AuthConfig carries the AuthController dependencies.
type AuthConfig struct {
	Exchanger   IdentityExchanger
	Provisioner UserProvisioner
	Users       repository.UserRepository
	Sessions    *session.Store
	Policy      redirect.Policy
	// Providers lists the identity providers offered on the login page.
	Providers []string
	// BeginAuth redirects to the provider's consent screen.
	BeginAuth fiber.Handler
}

func NewAuthController(cfg AuthConfig) *AuthController {
	return &AuthController{
		exchanger:   cfg.Exchanger,
		provisioner: cfg.Provisioner,
		users:       cfg.Users,
		sessions:    cfg.Sessions,
		policy:      cfg.Policy,
		providers:   cfg.Providers,
		beginAuth:   cfg.BeginAuth,
		timeout:     20 * time.Second,
	}
}

// HandleLogin renders the provider list.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect(redirect.SanitizeNext(c.Query("next")), fiber.StatusSeeOther)
	}
	next := ""
	if raw := c.Query("next"); raw != "" {
		next = redirect.SanitizeNext(raw)
	}
	return render(c, "Sign in", views.Login(ac.providers, next))
}

// HandleBegin remembers where to send the user after login and starts the
// provider flow.
func (ac *AuthController) HandleBegin(c *fiber.Ctx) error {
	if !slices.Contains(ac.providers, c.Params("provider")) {
		return fiber.ErrNotFound
	}

	if raw := c.Query("next"); raw != "" {
		sess, err := ac.sessions.Get(c)
		if err != nil {
			log.Printf("[Auth] Session load failed before provider redirect: %v", err)
		} else {
			sess.Set(usercontext.KeyLoginNext, redirect.SanitizeNext(raw))
			if err := sess.Save(); err != nil {
				log.Printf("[Auth] Session save failed before provider redirect: %v", err)
			}
		}
	}
	return ac.beginAuth(c)
}

// HandleCallback completes the provider flow, provisions the user on first
// login, establishes the app session and redirects to the requested page.
// Every failure ends on the auth error page without a session.
func (ac *AuthController) HandleCallback(c *fiber.Ctx) error {
	origin := redirect.Origin(c)

	if c.Query("code") == "" {
		metrics.UserProvisioning.WithLabelValues(metrics.ResultRejected).Inc()
		log.Printf("[Auth] %v (remote %s)", provisioning.ErrMissingAuthCode, c.IP())
		return ac.fail(c, origin)
	}

	identity, err := ac.exchanger.Exchange(c)
	if err != nil {
		metrics.UserProvisioning.WithLabelValues(metrics.ResultRejected).Inc()
		log.Printf("[Auth] %v: %v", provisioning.ErrAuthExchangeFailed, err)
		return ac.fail(c, origin)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), ac.timeout)
	defer cancel()

	result, err := ac.provisioner.EnsureUser(ctx, identity)
	if err != nil {
		metrics.UserProvisioning.WithLabelValues(metrics.ResultFailed).Inc()
		log.Printf("[Auth] Provisioning failed for identity %s: %v", identity.ID, err)
		return ac.fail(c, origin)
	}
	if result.Created {
		metrics.UserProvisioning.WithLabelValues(metrics.ResultCreated).Inc()
		log.Printf("[Auth] Provisioned user %s with billing customer %s", result.User.ID, result.User.BillingCustomerID)
	} else {
		metrics.UserProvisioning.WithLabelValues(metrics.ResultExisting).Inc()
	}

	sess, err := ac.sessions.Get(c)
	if err != nil {
		log.Printf("[Auth] Session load failed for user %s: %v", result.User.ID, err)
		return ac.fail(c, origin)
	}
	next := c.Query("next")
	if next == "" {
		next, _ = sess.Get(usercontext.KeyLoginNext).(string)
	}
	next = redirect.SanitizeNext(next)

	// Fresh session id on login.
	if err := sess.Regenerate(); err != nil {
		log.Printf("[Auth] Session regenerate failed for user %s: %v", result.User.ID, err)
		return ac.fail(c, origin)
	}
	sess.Delete(usercontext.KeyLoginNext)
	sess.Set(usercontext.KeyUserID, result.User.ID)
	sess.Set(usercontext.KeyUsername, result.User.Name)
	sess.Set(usercontext.KeyPlan, result.User.Plan)
	if err := sess.Save(); err != nil {
		log.Printf("[Auth] Session save failed for user %s: %v", result.User.ID, err)
		return ac.fail(c, origin)
	}

	if err := ac.users.TouchLastLogin(ctx, result.User.ID); err != nil {
		log.Printf("[Auth] Could not update last login for user %s: %v", result.User.ID, err)
	}

	return c.Redirect(ac.policy.Target(origin, c.Get("X-Forwarded-Host"), next), fiber.StatusSeeOther)
}

func (ac *AuthController) fail(c *fiber.Ctx, origin string) error {
	return c.Redirect(redirect.ErrorTarget(origin), fiber.StatusSeeOther)
}

// HandleAuthError renders the static sign-in failure page.
func (ac *AuthController) HandleAuthError(c *fiber.Ctx) error {
	return c.Render("auth_code_error", fiber.Map{"Title": "Sign-in failed"})
}

// HandleLogout destroys the app session.
func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	sess, err := ac.sessions.Get(c)
	if err == nil {
		err = sess.Destroy()
	}
	if err != nil {
		log.Printf("[Auth] Logout failed: %v", err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Sign-out failed, please try again."}).Redirect("/", fiber.StatusSeeOther)
	}
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "You have been signed out."}).Redirect("/", fiber.StatusSeeOther)
}
