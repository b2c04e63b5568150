package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/internal/presentation/http/dto/response"
)

// tokenTenantKey holds the tenant claimed by the token until the tenant
// middleware has verified it
const tokenTenantKey = "token_tenant_id"

// TenantMiddleware resolves the tenant named in the access token, verifies
// it exists and adds it to the context. Every order query downstream is
// scoped to this tenant.
func TenantMiddleware(tenantRepo repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimed, _ := c.Get(tokenTenantKey)
		tenantID, ok := claimed.(uuid.UUID)
		if !ok || tenantID == uuid.Nil {
			response.BadRequest(c, "Tenant context required")
			c.Abort()
			return
		}

		tenant, err := tenantRepo.GetByID(c.Request.Context(), tenantID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if tenant == nil {
			response.NotFound(c, "Tenant not found")
			c.Abort()
			return
		}

		c.Set("tenant_id", tenant.ID)
		c.Set("tenant", tenant)

		c.Next()
	}
}

// GetTenantID retrieves the verified tenant ID from gin context
func GetTenantID(c *gin.Context) uuid.UUID {
	tenantID, exists := c.Get("tenant_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := tenantID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
