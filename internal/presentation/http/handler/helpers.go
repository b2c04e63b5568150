package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/pkg/apperror"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return nil
	}
	return &userID
}

// GetTenantID extracts the tenant ID set by the tenant middleware
func GetTenantID(c *gin.Context) *uuid.UUID {
	tenantIDVal, exists := c.Get("tenant_id")
	if !exists {
		return nil
	}
	tenantID, ok := tenantIDVal.(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return nil
	}
	return &tenantID
}

// parseDateFilter parses a YYYY-MM-DD query value. With endOfDay the result
// is the last instant of that day, so a range includes the whole day.
func parseDateFilter(field, value string, endOfDay bool) (*time.Time, *apperror.FieldError) {
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, &apperror.FieldError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	if endOfDay {
		date = date.Add(24*time.Hour - time.Nanosecond)
	}
	return &date, nil
}
