// Package redirect computes where the login callback sends the browser.
package redirect

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/saasbase/internal/pkg/env"
)

// ErrorPath is the static page shown when a login cannot be completed.
const ErrorPath = "/auth/auth-code-error"

// DefaultNext is used when no usable next path was supplied.
const DefaultNext = "/"

// Policy decides how public redirect URLs are built.
type Policy struct {
	// LocalMode means no proxy sits in front of the app, so forwarded
	// headers are never consulted.
	LocalMode bool
	// TrustForwardedHost enables X-Forwarded-Host outside local mode. Only
	// set it when a proxy overwrites the header faithfully.
	TrustForwardedHost bool
}

// PolicyFromEnv reads APP_ENV and TRUST_PROXY_HEADERS.
func PolicyFromEnv() Policy {
	return Policy{
		LocalMode:          env.IsDev(),
		TrustForwardedHost: env.GetBool("TRUST_PROXY_HEADERS", true),
	}
}

// Target returns the absolute URL for a successful login.
func (p Policy) Target(origin, forwardedHost, next string) string {
	next = SanitizeNext(next)
	if p.LocalMode {
		return origin + next
	}
	if p.TrustForwardedHost {
		if host := SanitizeForwardedHost(forwardedHost); host != "" {
			return "https://" + host + next
		}
	}
	return origin + next
}

// ErrorTarget returns the absolute URL of the login error page.
func ErrorTarget(origin string) string {
	return origin + ErrorPath
}

// SanitizeNext keeps next only when it is a same-origin relative path.
func SanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") {
		return DefaultNext
	}
	// "//host" and "/\host" are treated as network-path references by browsers.
	if strings.HasPrefix(next, "//") || strings.Contains(next, `\`) || hasControl(next) {
		return DefaultNext
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return DefaultNext
	}
	return next
}

// SanitizeForwardedHost returns the first host of a forwarded-host header,
// or "" when it is not a bare host[:port].
func SanitizeForwardedHost(raw string) string {
	host, _, _ := strings.Cut(raw, ",")
	host = strings.TrimSpace(host)
	if host == "" || strings.ContainsAny(host, "/\\@?# ") || hasControl(host) {
		return ""
	}
	u, err := url.Parse("https://" + host)
	if err != nil || u.Host != host || u.Hostname() == "" {
		return ""
	}
	return host
}

// Origin is the scheme and host the request was received on, ignoring any
// proxy headers.
func Origin(c *fiber.Ctx) string {
	scheme := "http"
	if c.Context().IsTLS() {
		scheme = "https"
	}
	return scheme + "://" + string(c.Context().Host())
}

func hasControl(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
