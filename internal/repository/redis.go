package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

const revokedKeyPrefix = "revoked:"

// RedisRevocationStore keeps revoked token digests in Redis. Each entry is
// written with a TTL equal to the token's remaining lifetime, so Redis does
// the purge that the SQL store handles lazily.
type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) RevokeToken(ctx context.Context, token *models.RevokedToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		// Already expired; nothing to track.
		return nil
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal revoked token: %w", err)
	}

	if err := s.client.Set(ctx, revokedKeyPrefix+token.TokenDigest, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsTokenRevoked(ctx context.Context, digest string, now time.Time) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+digest).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
