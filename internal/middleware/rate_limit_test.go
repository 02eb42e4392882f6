package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(0.1, 5)
	defer rl.Stop()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow("ravi_farm_in") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if rl.Allow("ravi_farm_in") {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentTenants(t *testing.T) {
	rl := NewRateLimiterWithConfig(0.1, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("tenant_a") {
			t.Errorf("tenant_a request %d should be allowed", i+1)
		}
	}
	if rl.Allow("tenant_a") {
		t.Error("tenant_a should be rate limited")
	}

	// tenant_b should still have its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow("tenant_b") {
			t.Errorf("tenant_b request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_GetStateUnknownTenant(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 4)
	defer rl.Stop()

	remaining, _ := rl.GetState("nobody")
	if remaining != 4 {
		t.Errorf("Expected full burst of 4, got %d", remaining)
	}
}

func TestRateLimitMiddleware_SkipsAnonymous(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(0.1, 1)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/interpret", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := RateLimitMiddleware(rl)(handler)(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimitMiddleware_LimitsTenant(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(0.1, 2)
	defer rl.Stop()

	session := domain.NewSession("auth0|1", "ravi@farm.in")
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	newContext := func() (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/interpret", nil)
		req = req.WithContext(WithSession(req.Context(), session))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/voice/interpret")
		return c, rec
	}

	for i := 0; i < 2; i++ {
		c, rec := newContext()
		if err := RateLimitMiddleware(rl)(handler)(c); err != nil {
			t.Fatalf("Request %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("Request %d: expected X-RateLimit-Limit 2, got %q", i+1, rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	c, rec := newContext()
	if err := RateLimitMiddleware(rl)(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected X-RateLimit-Remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}
