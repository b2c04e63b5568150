package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withPermissions(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_permissions", perms)
		c.Next()
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name     string
		perms    []string
		required string
		status   int
	}{
		{"view with view", []string{PermissionOrdersView}, PermissionOrdersView, http.StatusOK},
		{"manage implies view", []string{PermissionOrdersManage}, PermissionOrdersView, http.StatusOK},
		{"view does not imply manage", []string{PermissionOrdersView}, PermissionOrdersManage, http.StatusForbidden},
		{"no permissions", nil, PermissionOrdersView, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", withPermissions(tt.perms...), RequirePermission(tt.required), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequirePermission_MissingContext(t *testing.T) {
	r := gin.New()
	r.GET("/", RequirePermission(PermissionOrdersView), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("reuses caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-123", w.Body.String())
	})

	t.Run("generates when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})
}

func TestTenantRateLimiter(t *testing.T) {
	rl := NewTenantRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Hour,
	})
	defer rl.Close()

	tenantA := uuid.New()
	tenantB := uuid.New()
	current := tenantA

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("tenant_id", current)
		c.Next()
	})
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	assert.Equal(t, http.StatusOK, call().Code)
	assert.Equal(t, http.StatusOK, call().Code)

	limited := call()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "too_many_requests")

	// another tenant has its own bucket
	current = tenantB
	assert.Equal(t, http.StatusOK, call().Code)
	assert.Equal(t, 2, rl.ActiveTenants())
}

func TestTenantRateLimiter_Cleanup(t *testing.T) {
	rl := NewTenantRateLimiter(RateLimiterConfig{
		CleanupInterval: time.Hour,
		EntryTTL:        time.Millisecond,
	})
	defer rl.Close()

	rl.getLimiter(uuid.New())
	require.Equal(t, 1, rl.ActiveTenants())

	time.Sleep(5 * time.Millisecond)
	rl.cleanup()
	assert.Equal(t, 0, rl.ActiveTenants())
}

func corsRouter(cfg *config.CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.GET("/api/v1/orders", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("preflight for an idempotent PATCH", func(t *testing.T) {
		r := corsRouter(&config.CORSConfig{AllowedHeaders: []string{"X-Client-Version"}})

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		methods := w.Header().Get("Access-Control-Allow-Methods")
		assert.Contains(t, methods, http.MethodPatch)
		assert.Contains(t, methods, http.MethodDelete)
		assert.NotContains(t, methods, http.MethodPut)

		headers := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
		assert.Contains(t, headers, "idempotency-key")
		assert.Contains(t, headers, "x-request-id")
		assert.Contains(t, headers, "authorization")
		// configured headers extend the defaults
		assert.Contains(t, headers, "x-client-version")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("exposes tracing and replay headers", func(t *testing.T) {
		r := corsRouter(&config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
		assert.Contains(t, exposed, "x-request-id")
		assert.Contains(t, exposed, "x-idempotency-replayed")
		assert.Contains(t, exposed, "retry-after")
	})

	t.Run("unknown origin is refused", func(t *testing.T) {
		r := corsRouter(&config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
