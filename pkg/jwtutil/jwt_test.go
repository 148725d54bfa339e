package jwtutil

import (
	"testing"

	"casedesk/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := GenerateToken(TenantClaims{Email: "cw@example.org", UserID: "u1", TenantID: "org-main", TenantName: "Main Office", Role: "case_worker"})
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "org-main", claims.TenantID)
	assert.Equal(t, "case_worker", claims.Role)
}

func TestRejectsForeignKeyAndExpiry(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
	token, err := GenerateToken(TenantClaims{UserID: "u1"})
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: -1})
	expired, err := GenerateToken(TenantClaims{UserID: "u1"})
	require.NoError(t, err)
	_, err = ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestNotInitialized(t *testing.T) {
	Initialize(nil)
	_, err := GenerateToken(TenantClaims{})
	assert.Error(t, err)
	_, err = ValidateToken("x")
	assert.Error(t, err)
}
