package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRequiresLogin(t *testing.T) {
	app := newTestApp(t, newAuthDeps(), nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=/dashboard", resp.Header.Get("Location"))
}

func TestDashboardShowsCurrentPlan(t *testing.T) {
	deps := newAuthDeps()
	app := newTestApp(t, deps, nil)
	login := callback(t, app, "?code=c&next=/dashboard", nil)
	require.Equal(t, "http://localhost:3000/dashboard", login.Header.Get("Location"))

	// A subscription webhook upgraded the user after login.
	deps.users.setPlan("ada@example.com", "pro_monthly")

	req := withCookies(httptest.NewRequest(http.MethodGet, "http://localhost:3000/dashboard", nil), login.Cookies())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Welcome, Ada Lovelace")
	assert.Contains(t, string(body), "ada@example.com")
	assert.Contains(t, string(body), `<dd class="plan">pro_monthly</dd>`)

	req = withCookies(httptest.NewRequest(http.MethodGet, "http://localhost:3000/whoami", nil), login.Cookies())
	who, err := app.Test(req)
	require.NoError(t, err)
	whoBody, _ := io.ReadAll(who.Body)
	assert.Contains(t, string(whoBody), "|pro_monthly")
}

func TestDashboardShowsAvatar(t *testing.T) {
	deps := newAuthDeps()
	app := newTestApp(t, deps, nil)
	login := callback(t, app, "?code=c", nil)

	req := withCookies(httptest.NewRequest(http.MethodGet, "http://localhost:3000/dashboard", nil), login.Cookies())
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "https://www.gravatar.com/avatar/")
}
