package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestTokenRoundTripCarriesCallerTriple(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60)
	agencyID := int64(2)
	user := &domain.User{
		ID:       7,
		Role:     domain.RoleAgency,
		AgencyID: &agencyID,
	}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)

	caller := claims.Caller()
	assert.Equal(t, int64(7), caller.UserID)
	assert.Equal(t, domain.RoleAgency, caller.Role)
	require.NotNil(t, caller.AgencyID)
	assert.Equal(t, int64(2), *caller.AgencyID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-one", 60)
	other := NewTokenManager("secret-two", 60)

	token, _, err := tm.GenerateToken(&domain.User{ID: 1, Role: domain.RoleCitizen})
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60)
	tm.ttl = -time.Minute

	token, _, err := tm.GenerateToken(&domain.User{ID: 1, Role: domain.RoleCitizen})
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}
