package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
}

func TestRateLimiter_BansOverLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		rl.Allow("1.2.3.4")
	}

	assert.False(t, rl.Allow("1.2.3.4"))
	// Still banned on the next attempt
	assert.False(t, rl.Allow("1.2.3.4"))
	// Other IPs unaffected
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiter_BanExpires(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 20*time.Millisecond)
	rl.Allow("1.2.3.4")
	assert.False(t, rl.Allow("1.2.3.4"))

	time.Sleep(1100 * time.Millisecond)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"https://example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://example.com")
	assert.True(t, oc.Check(req))

	req.Header.Set("Origin", "https://EXAMPLE.com")
	assert.True(t, oc.Check(req))

	req.Header.Set("Origin", "https://evil.com")
	assert.False(t, oc.Check(req))

	// No Origin header passes (same-origin or native client)
	req.Header.Del("Origin")
	assert.True(t, oc.Check(req))
}

func TestOriginChecker_AllowAll(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://anything.com")

	assert.True(t, NewOriginChecker(nil).Check(req))
	assert.True(t, NewOriginChecker([]string{"*"}).Check(req))
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1", GetClientIP(req))

	req.Header.Set("X-Real-IP", "20.0.0.2")
	assert.Equal(t, "20.0.0.2", GetClientIP(req))

	req.Header.Set("X-Forwarded-For", "30.0.0.3, 10.0.0.1")
	assert.Equal(t, "30.0.0.3", GetClientIP(req))
}
