//go:build unit

package jwt

import (
	"testing"
	"time"

	"refund-settlement-engine/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	id := uuid.New()

	token, err := svc.GenerateToken(id, user.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestService_Rejections(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	token, err := svc.GenerateToken(uuid.New(), user.RoleUser)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewService("other-secret", time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewService("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("nil user id", func(t *testing.T) {
		blank, err := svc.GenerateToken(uuid.Nil, user.RoleUser)
		require.NoError(t, err)
		_, err = svc.ValidateToken(blank)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
