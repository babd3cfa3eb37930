package session

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/saasbase/internal/pkg/env"
)

const (
	cookieName = "session_id"
	// Cache uses DB 0, oauth state DB 2.
	sessionDatabase = 1
)

// NewSessionStore creates the app session store on the redis server the
// cache client points at.
func NewSessionStore(rdb *goredis.Client) *session.Store {
	host, port, username, password := "localhost", 6379, "", env.GetEnv("CACHE_PASSWORD", "")
	if rdb != nil {
		host, port = SplitAddr(rdb.Options().Addr, host, port)
		username = rdb.Options().Username
		// Prefer password from the underlying client if present
		if p := rdb.Options().Password; p != "" {
			password = p
		}
	}

	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Database: sessionDatabase,
		Reset:    false,
	})
	return session.New(Config(storage))
}

// NewMemoryStore keeps sessions in process memory. Used in tests.
func NewMemoryStore() *session.Store {
	return session.New(Config(nil))
}

// Config returns the app session settings for the given storage. A nil
// storage selects fiber's in-memory storage.
func Config(storage fiber.Storage) session.Config {
	return session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:" + cookieName,
	}
}

// SplitAddr parses "host:port", returning the defaults for missing parts.
func SplitAddr(addr, defHost string, defPort int) (string, int) {
	if addr == "" {
		return defHost, defPort
	}
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, defPort
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		port = defPort
	}
	if h == "" {
		h = defHost
	}
	return h, port
}
