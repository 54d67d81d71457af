package web

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowAndRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10)
	defer rl.Close()
	rl.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		ok, _ := rl.Allow("1.2.3.4")
		assert.True(t, ok, "request %d", i)
	}

	ok, retry := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 6, retry)

	// A rejected request does not consume budget.
	now = now.Add(6 * time.Second)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0)
	defer rl.Close()
	for i := 0; i < 1000; i++ {
		ok, _ := rl.Allow("1.2.3.4")
		assert.True(t, ok)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:5555"
	assert.Equal(t, "198.51.100.7", clientIP(r, false))
	assert.Equal(t, "198.51.100.7", clientIP(r, true))

	r.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", clientIP(r, false))
	assert.Equal(t, "203.0.113.1", clientIP(r, true))
}
