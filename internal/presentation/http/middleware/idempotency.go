package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from a stored key
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// DefaultIdempotencyKeyTTL is how long keys are valid when no TTL is configured
	DefaultIdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
	Log  *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a write that was already
// processed under the same Idempotency-Key for the tenant. Reusing a key
// with a different body is rejected. Server errors are not stored, so the
// client may retry them.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyKeyTTL
	}
	log := config.Log
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		// Only apply to POST, PUT, PATCH methods
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}
		if len(idempotencyKey) > 255 {
			response.BadRequest(c, "Idempotency-Key must be at most 255 characters")
			c.Abort()
			return
		}

		tenantID := GetTenantID(c)
		userIDValue, _ := c.Get("user_id")
		userID, ok := userIDValue.(uuid.UUID)
		if tenantID == uuid.Nil || !ok {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Invalid request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		endpoint := c.Request.Method + " " + c.FullPath()
		requestHash := hashRequest(endpoint, body)

		existing, err := config.Repo.GetByKey(c.Request.Context(), tenantID, idempotencyKey)
		if err != nil {
			log.Warn("idempotency lookup failed", zap.String("key", idempotencyKey), zap.Error(err))
			c.Next()
			return
		}

		if existing != nil && !existing.IsExpired() {
			if existing.RequestHash != "" && existing.RequestHash != requestHash {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}
		if existing != nil {
			// expired key still holds the unique slot
			if _, err := config.Repo.DeleteExpired(c.Request.Context()); err != nil {
				log.Warn("failed to purge expired idempotency keys", zap.Error(err))
			}
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:          idempotencyKey,
			TenantID:     tenantID,
			UserID:       userID,
			Endpoint:     endpoint,
			RequestHash:  requestHash,
			ResponseCode: c.Writer.Status(),
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(ttl),
		}
		if err := config.Repo.Create(c.Request.Context(), ikey); err != nil {
			log.Warn("failed to store idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}
}

func hashRequest(endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
