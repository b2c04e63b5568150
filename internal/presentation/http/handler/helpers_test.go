package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateFilter(t *testing.T) {
	t.Run("start of day", func(t *testing.T) {
		date, fieldErr := parseDateFilter("start_date", "2026-03-01", false)
		require.Nil(t, fieldErr)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *date)
	})

	t.Run("end of day", func(t *testing.T) {
		date, fieldErr := parseDateFilter("end_date", "2026-03-01", true)
		require.Nil(t, fieldErr)
		assert.Equal(t, time.Date(2026, 3, 1, 23, 59, 59, 999999999, time.UTC), *date)
	})

	for _, value := range []string{"01/03/2026", "2026-02-30", "yesterday"} {
		t.Run("rejects "+value, func(t *testing.T) {
			date, fieldErr := parseDateFilter("end_date", value, true)
			assert.Nil(t, date)
			require.NotNil(t, fieldErr)
			assert.Equal(t, "end_date", fieldErr.Field)
		})
	}
}

func TestContextIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetUserID(c))
	assert.Nil(t, GetTenantID(c))

	c.Set("user_id", uuid.Nil)
	assert.Nil(t, GetUserID(c))

	userID := uuid.New()
	tenantID := uuid.New()
	c.Set("user_id", userID)
	c.Set("tenant_id", tenantID)
	require.NotNil(t, GetUserID(c))
	assert.Equal(t, userID, *GetUserID(c))
	require.NotNil(t, GetTenantID(c))
	assert.Equal(t, tenantID, *GetTenantID(c))
}
