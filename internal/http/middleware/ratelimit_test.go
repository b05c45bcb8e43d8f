package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func limitedRouter(rl *RateLimiter, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(pre...)
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(100, 5, KeyByUserOrIP())
	r := limitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
}

func TestRateLimiterBlocksPastBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, KeyByUserOrIP())
	r := limitedRouter(rl)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", w2.Code)
	}
	if w2.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After")
	}
}

func TestRateLimiterKeysPerUser(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, KeyByUserOrIP())
	asUser := func(uid string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(ctxKeyUserID, uid); c.Next() }
	}

	// Each user owns an independent bucket.
	for _, uid := range []string{"u1", "u2"} {
		r := limitedRouter(rl, asUser(uid))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("user %s: status = %d", uid, w.Code)
		}
	}

	r := limitedRouter(rl, asUser("u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("u1 second request: status = %d, want 429", w.Code)
	}
}

func TestRateLimiterReplayBypass(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, KeyByUserOrIP())
	markReplay := func(c *gin.Context) { c.Set(ctxKeyRateBypass, true); c.Next() }
	r := limitedRouter(rl, markReplay)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("replay %d: status = %d, replays must bypass limiting", i, w.Code)
		}
	}
}

func TestRateLimiterBurstCoercion(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyByUserOrIP())
	if rl.burst != 1 {
		t.Errorf("burst = %d, want coerced 1", rl.burst)
	}
}
