package service

import (
	"testing"
	"time"

	"wine-lot-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "wine-lot-exchange")
	accountID := uuid.New()

	token, expiry, err := svc.Generate(accountID, domain.RoleTrader)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, domain.RoleTrader, claims.Role)
}

func TestJWTTokenService_Validate_WrongSecret(t *testing.T) {
	svc := NewJWTTokenService("secret-a", time.Hour, "wine-lot-exchange")
	other := NewJWTTokenService("secret-b", time.Hour, "wine-lot-exchange")

	token, _, err := svc.Generate(uuid.New(), domain.RoleProducer)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Expired(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", -time.Minute, "wine-lot-exchange")

	token, _, err := svc.Generate(uuid.New(), domain.RoleTrader)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Garbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "wine-lot-exchange")

	_, err := svc.Validate("not.a.jwt")
	assert.Error(t, err)
}
