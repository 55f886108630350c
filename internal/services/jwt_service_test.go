package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fullstack-todolist/backend/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestJWTService() *JWTService {
	return NewJWTService(config.AuthConfig{
		JWTSecret: testSecret,
		JWTIssuer: "fullstack-todolist",
		TokenTTL:  time.Hour,
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	s := newTestJWTService()

	token, err := s.GenerateToken("cli", 0)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.Subject)
	assert.Equal(t, "fullstack-todolist", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_Expired(t *testing.T) {
	s := newTestJWTService()
	issued := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return issued }

	token, err := s.GenerateToken("cli", time.Minute)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongIssuer(t *testing.T) {
	other := NewJWTService(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "someone-else", TokenTTL: time.Hour})
	token, err := other.GenerateToken("cli", 0)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsNoneAlg(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "cli",
		Issuer:    "fullstack-todolist",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
