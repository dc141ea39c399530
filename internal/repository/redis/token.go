package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/arca-mz/storefront/pkg/errors"
)

const tokenKeyPrefix = "arca:token:"

// TokenRepository implements repository.TokenRepository using Redis.
type TokenRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenRepository creates a new Redis-backed token repository.
func NewTokenRepository(client *redis.Client, ttl time.Duration) *TokenRepository {
	return &TokenRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the bearer token for a session.
func (r *TokenRepository) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := r.client.Get(ctx, tokenKeyPrefix+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.Unauthorized("no active session token")
		}
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return token, nil
}

// Save stores the bearer token for a session with the configured TTL.
func (r *TokenRepository) Save(ctx context.Context, sessionID, token string) error {
	if err := r.client.Set(ctx, tokenKeyPrefix+sessionID, token, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Delete removes the token for a session.
func (r *TokenRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, tokenKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}
