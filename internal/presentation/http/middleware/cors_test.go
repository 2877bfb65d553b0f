package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lineform-api/internal/config"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		cfg  config.CORSConfig
	}{
		{"defaults", config.CORSConfig{}},
		{"configured headers", config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			r := gin.New()
			r.Use(CORSMiddleware(&cfg))
			r.POST("/forms/1/submit", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/forms/1/submit", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
			for _, h := range []string{IdempotencyReplayedHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"} {
				if !strings.Contains(exposed, strings.ToLower(h)) {
					t.Errorf("%s not exposed: %q", h, exposed)
				}
			}

			preflight := httptest.NewRequest(http.MethodOptions, "/forms/1/submit", nil)
			preflight.Header.Set("Origin", "http://localhost:3000")
			preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
			preflight.Header.Set("Access-Control-Request-Headers", IdempotencyKeyHeader)
			w = httptest.NewRecorder()
			r.ServeHTTP(w, preflight)

			allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
			if !strings.Contains(allowed, strings.ToLower(IdempotencyKeyHeader)) {
				t.Errorf("Idempotency-Key not allowed: %q", allowed)
			}
		})
	}
}
