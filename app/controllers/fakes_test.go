package controllers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/saasbase/app/models"
	"github.com/ManuelReschke/saasbase/internal/pkg/middleware"
	"github.com/ManuelReschke/saasbase/internal/pkg/provisioning"
	"github.com/ManuelReschke/saasbase/internal/pkg/redirect"
	"github.com/ManuelReschke/saasbase/internal/pkg/session"
	"github.com/ManuelReschke/saasbase/internal/pkg/usercontext"
	"github.com/ManuelReschke/saasbase/internal/pkg/viewmodel"
)

type fakeExchanger struct {
	mu       sync.Mutex
	calls    int
	identity provisioning.Identity
	err      error
}

func (f *fakeExchanger) Exchange(*fiber.Ctx) (provisioning.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.identity, f.err
}

type fakeCustomers struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeCustomers) CreateCustomer(_ context.Context, externalID, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "cus_" + externalID, nil
}

type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	inserts int
	lookups int
	touched []string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*models.User{}}
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if u, ok := m.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryUsers) CreateIfAbsent(_ context.Context, user *models.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return false, nil
	}
	user.CreatedAt = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	cp := *user
	m.byEmail[user.Email] = &cp
	m.inserts++
	return true, nil
}

func (m *memoryUsers) TouchLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, id)
	return nil
}

func (m *memoryUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

func (m *memoryUsers) setPlan(email, plan string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[email].Plan = plan
}

type fakeCatalog struct {
	cards []viewmodel.PlanCard
	err   error
}

func (f *fakeCatalog) Cards(context.Context) ([]viewmodel.PlanCard, error) {
	return f.cards, f.err
}

type authDeps struct {
	exchanger *fakeExchanger
	customers *fakeCustomers
	users     *memoryUsers
	policy    redirect.Policy
}

func newAuthDeps() *authDeps {
	return &authDeps{
		exchanger: &fakeExchanger{identity: provisioning.Identity{
			ID:       "github:42",
			Email:    "ada@example.com",
			Name:     "Ada Lovelace",
			Provider: "github",
		}},
		customers: &fakeCustomers{},
		users:     newMemoryUsers(),
		policy:    redirect.Policy{LocalMode: true},
	}
}

var errProviderRejected = errors.New("oauth2: invalid_grant")

// newTestApp mounts the web routes against fakes.
func newTestApp(t *testing.T, deps *authDeps, catalog PlanCatalog) *fiber.App {
	t.Helper()

	store := session.NewMemoryStore()
	app := fiber.New(fiber.Config{Views: html.New("../../views", ".html")})
	app.Use(middleware.UserContext(store))

	ac := NewAuthController(AuthConfig{
		Exchanger:   deps.exchanger,
		Provisioner: provisioning.NewProvisioner(deps.users, deps.customers),
		Users:       deps.users,
		Sessions:    store,
		Policy:      deps.policy,
		Providers:   []string{"github"},
		BeginAuth: func(c *fiber.Ctx) error {
			return c.Redirect("https://github.com/login/oauth/authorize", fiber.StatusTemporaryRedirect)
		},
	})
	if catalog == nil {
		catalog = &fakeCatalog{}
	}
	lc := NewLandingController(catalog)
	dc := NewDashboardController(deps.users, store)

	app.Get("/", lc.HandleIndex)
	app.Get("/login", ac.HandleLogin)
	app.Post("/logout", ac.HandleLogout)
	app.Get("/auth/auth-code-error", ac.HandleAuthError)
	app.Get("/auth/:provider/callback", ac.HandleCallback)
	app.Get("/auth/:provider", ac.HandleBegin)
	app.Get("/dashboard", middleware.RequireAuth, dc.HandleDashboard)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		uc := usercontext.GetUserContext(c)
		return c.SendString(uc.UserID + "|" + uc.Plan)
	})
	return app
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return req
}
