package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
	}{
		{"", "localhost", 6379},
		{"redis:6380", "redis", 6380},
		{":6381", "localhost", 6381},
		{"redis", "redis", 6379},
		{"redis:abc", "redis", 6379},
	}
	for _, tt := range tests {
		host, port := SplitAddr(tt.addr, "localhost", 6379)
		assert.Equal(t, tt.wantHost, host, tt.addr)
		assert.Equal(t, tt.wantPort, port, tt.addr)
	}
}

func TestConfigUsesSessionCookie(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	cfg := Config(nil)
	assert.Equal(t, "cookie:session_id", cfg.KeyLookup)
	assert.True(t, cfg.CookieHTTPOnly)
	assert.False(t, cfg.CookieSecure)
}
