package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/bizops-api/internal/config"
)

// methods served under /api/v1/orders
var orderAPIMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// request headers the order API reads; always allowed
var requiredRequestHeaders = []string{
	"Authorization",
	"Content-Type",
	IdempotencyKeyHeader,
	RequestIDHeader,
}

// response headers browsers may read: request tracing, idempotent replay
// and rate limit state
var exposedResponseHeaders = []string{
	"Content-Length",
	RequestIDHeader,
	IdempotencyReplayedHeader,
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"Retry-After",
}

// CORSMiddleware creates a CORS middleware for the order API. Configured
// headers extend the required set rather than replace it.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     append(append([]string{"Accept", "Origin"}, requiredRequestHeaders...), cfg.AllowedHeaders...),
		ExposeHeaders:    exposedResponseHeaders,
		AllowCredentials: false, // bearer tokens, no cookies
		MaxAge:           12 * time.Hour,
	}

	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = orderAPIMethods
	}

	return cors.New(corsConfig)
}
