package oauth

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	goredis "github.com/redis/go-redis/v9"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/saasbase/internal/pkg/env"
	"github.com/ManuelReschke/saasbase/internal/pkg/provisioning"
	appsession "github.com/ManuelReschke/saasbase/internal/pkg/session"
)

// ErrIncompleteProfile is returned when the provider omits the stable id.
var ErrIncompleteProfile = errors.New("identity provider returned an incomplete profile")

// Setup registers every provider that has credentials configured and puts
// the OAuth state store on redis. It is safe to call multiple times;
// providers will just be re-registered.
func Setup(rdb *goredis.Client) []string {
	names := UseProviders(BaseURL())

	// OAuth state via Redis, same server as app sessions (separate DB)
	host, port, username, password := "127.0.0.1", 6379, "", ""
	if rdb != nil {
		opts := rdb.Options()
		host, port = appsession.SplitAddr(opts.Addr, host, port)
		username, password = opts.Username, opts.Password
	}

	gothfiber.SessionStore = session.New(session.Config{
		Storage: redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Username: username,
			Password: password,
			Database: 2,
			Reset:    false,
		}),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour,
	})
	return names
}

// BaseURL is the public origin used to build provider callback URLs.
func BaseURL() string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base
}

// UseProviders registers the configured providers and returns their names,
// sorted.
func UseProviders(base string) []string {
	var providers []goth.Provider
	if key := env.GetEnv("GOOGLE_KEY", ""); key != "" {
		providers = append(providers, google.New(
			key,
			env.GetEnv("GOOGLE_SECRET", ""),
			base+"/auth/google/callback",
			"email", "profile",
		))
	}
	if key := env.GetEnv("GITHUB_KEY", ""); key != "" {
		providers = append(providers, github.New(
			key,
			env.GetEnv("GITHUB_SECRET", ""),
			base+"/auth/github/callback",
			"read:user", "user:email",
		))
	}
	if key := env.GetEnv("DISCORD_KEY", ""); key != "" {
		providers = append(providers, discord.New(
			key,
			env.GetEnv("DISCORD_SECRET", ""),
			base+"/auth/discord/callback",
			discord.ScopeIdentify, discord.ScopeEmail,
		))
	}

	goth.ClearProviders()
	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

// Exchanger completes the provider flow for the callback request.
type Exchanger struct{}

// Exchange trades the authorization code on c for the user's profile.
func (Exchanger) Exchange(c *fiber.Ctx) (provisioning.Identity, error) {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return provisioning.Identity{}, err
	}
	return IdentityFromUser(u)
}

// IdentityFromUser maps a goth profile to the fields provisioning needs.
func IdentityFromUser(u goth.User) (provisioning.Identity, error) {
	if strings.TrimSpace(u.UserID) == "" {
		return provisioning.Identity{}, ErrIncompleteProfile
	}
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = strings.TrimSpace(u.NickName)
	}
	return provisioning.Identity{
		ID:       u.Provider + ":" + u.UserID,
		Email:    strings.TrimSpace(u.Email),
		Name:     name,
		Provider: u.Provider,
	}, nil
}
