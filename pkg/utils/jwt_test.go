package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "bizops-api")
	userID, tenantID := uuid.New(), uuid.New()

	token, err := m.GenerateAccessToken(userID, tenantID, "clerk@acme.test", []string{"orders.view"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.True(t, claims.HasPermission("orders.view"))
	assert.False(t, claims.HasPermission("orders.manage"))
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "bizops-api")

	expired, err := NewJWTManager("secret", -time.Minute, "bizops-api").GenerateAccessToken(uuid.New(), uuid.New(), "", nil)
	require.NoError(t, err)
	otherKey, err := NewJWTManager("other", time.Hour, "bizops-api").GenerateAccessToken(uuid.New(), uuid.New(), "", nil)
	require.NoError(t, err)
	otherIssuer, err := NewJWTManager("secret", time.Hour, "someone-else").GenerateAccessToken(uuid.New(), uuid.New(), "", nil)
	require.NoError(t, err)
	noTenant, err := m.GenerateAccessToken(uuid.New(), uuid.Nil, "", nil)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"no tenant":    noTenant,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateAccessToken(token)
			assert.Error(t, err)
		})
	}
}
