package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisRevocationStore(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisRevocationStore(client)
	ctx := context.Background()

	now := time.Now().UTC()
	token := &models.RevokedToken{
		TokenDigest: "abc123digest",
		UserID:      "user-1",
		Reason:      models.RevokeReasonLogout,
		ExpiresAt:   now.Add(time.Hour),
		CreatedAt:   now,
	}

	t.Run("not revoked initially", func(t *testing.T) {
		revoked, err := store.IsTokenRevoked(ctx, token.TokenDigest, now)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked after RevokeToken", func(t *testing.T) {
		require.NoError(t, store.RevokeToken(ctx, token))

		revoked, err := store.IsTokenRevoked(ctx, token.TokenDigest, now)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("entry expires with the token", func(t *testing.T) {
		mr.FastForward(2 * time.Hour)

		revoked, err := store.IsTokenRevoked(ctx, token.TokenDigest, now.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("already expired token is a no-op", func(t *testing.T) {
		expired := &models.RevokedToken{
			TokenDigest: "expired-digest",
			UserID:      "user-1",
			Reason:      models.RevokeReasonLogout,
			ExpiresAt:   now.Add(-time.Minute),
			CreatedAt:   now,
		}
		require.NoError(t, store.RevokeToken(ctx, expired))

		revoked, err := store.IsTokenRevoked(ctx, expired.TokenDigest, now)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("other digests unaffected", func(t *testing.T) {
		require.NoError(t, store.RevokeToken(ctx, &models.RevokedToken{
			TokenDigest: "digest-a",
			UserID:      "user-2",
			Reason:      models.RevokeReasonSecurity,
			ExpiresAt:   time.Now().Add(time.Hour),
			CreatedAt:   time.Now(),
		}))

		revoked, err := store.IsTokenRevoked(ctx, "digest-b", time.Now())
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
