package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterRefills(t *testing.T) {
	l := NewRateLimiter(100*time.Millisecond, 2)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	if !l.Allow("u1") || !l.Allow("u1") {
		t.Fatalf("expected first two calls to pass")
	}
	if l.Allow("u1") {
		t.Fatalf("expected third call inside the window to be limited")
	}
	// Other keys have their own bucket
	if !l.Allow("u2") {
		t.Fatalf("expected a different key to pass")
	}

	now = now.Add(100 * time.Millisecond)
	if !l.Allow("u1") {
		t.Fatalf("expected bucket to refill after the window")
	}
}

func TestRateLimiterMiddlewareRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewRateLimiter(time.Minute, 1)

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		c.Set(ContextUserIDKey, uint(9))
		c.Next()
	}, l.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
}
