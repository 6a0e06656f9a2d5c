package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("expected request %d within burst to be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Fatalf("expected request beyond burst to be denied")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(100, 1)

	if !rl.Allow("client-a") {
		t.Fatalf("expected first request to be allowed")
	}
	if rl.Allow("client-a") {
		t.Fatalf("expected second immediate request to be denied")
	}

	time.Sleep(50 * time.Millisecond)

	if !rl.Allow("client-a") {
		t.Fatalf("expected request after refill to be allowed")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	if !rl.Allow("client-a") {
		t.Fatalf("expected first client to be allowed")
	}
	if rl.Allow("client-a") {
		t.Fatalf("expected first client to exhaust its bucket")
	}
	if !rl.Allow("client-b") {
		t.Fatalf("expected second client to have its own bucket")
	}
}

func TestNewRateLimiterEnforcesMinimumBurst(t *testing.T) {
	rl := NewRateLimiter(1, 0)

	if !rl.Allow("client-a") {
		t.Fatalf("expected a single request to be allowed")
	}
	if rl.Allow("client-a") {
		t.Fatalf("expected bucket of size one to be exhausted")
	}
}

func TestRateLimitMiddlewareRejectsExcess(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := RateLimit(1, 2)
	wrapped := mw(handler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/chat/message", nil)
		req.Header.Set("X-Real-Ip", "203.0.113.7")
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected request %d to pass, got %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/chat/message", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.7")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rate limit exceeded") {
		t.Fatalf("expected rate limit message, got %q", rec.Body.String())
	}
}

func TestRateLimitMiddlewareKeysByClientIP(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := RateLimit(1, 1)
	wrapped := mw(handler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/chat/message", nil)
		req.Header.Set("X-Real-Ip", ip)
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("203.0.113.7"); got != http.StatusOK {
		t.Fatalf("expected first client to pass, got %d", got)
	}
	if got := send("203.0.113.8"); got != http.StatusOK {
		t.Fatalf("expected second client to pass, got %d", got)
	}
	if got := send("203.0.113.7"); got != http.StatusTooManyRequests {
		t.Fatalf("expected first client to be limited, got %d", got)
	}
}
