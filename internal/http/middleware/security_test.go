package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func secureRouter(opt SecurityOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(opt))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestSecurityHeadersBaseline(t *testing.T) {
	r := secureRouter(SecurityOptions{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Errorf("baseline headers missing: %v", h)
	}
	if h.Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must be off by default")
	}
	if h.Get("Cache-Control") != "" {
		t.Error("no-store must be off by default")
	}
}

func TestSecurityHeadersOptional(t *testing.T) {
	r := secureRouter(SecurityOptions{NoStore: true, EnablePolicy: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	h := w.Header()
	if h.Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", h.Get("Cache-Control"))
	}
	if h.Get("Permissions-Policy") == "" {
		t.Error("Permissions-Policy missing")
	}
}

func TestSecurityHeadersHSTSOnlyOverHTTPS(t *testing.T) {
	r := secureRouter(SecurityOptions{EnableHSTS: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS emitted on plain HTTP")
	}

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w2, req)
	sts := w2.Header().Get("Strict-Transport-Security")
	if !strings.Contains(sts, "max-age=") {
		t.Errorf("HSTS = %q, want max-age over forwarded HTTPS", sts)
	}
}

func TestSecurityHeadersExposeRequestID(t *testing.T) {
	r := secureRouter(SecurityOptions{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if exp := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(exp, requestIDHeader) {
		t.Errorf("Expose-Headers = %q", exp)
	}
}
