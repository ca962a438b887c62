package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/billalcoder/skinCare/internal/models"
)

const sessionKeyPrefix = "skincare:session:"

// RedisSessionCache stores session rows in Redis keyed by bearer token so the
// per-request liveness check can skip the database on the hot path. The
// database remains the source of truth; every cache entry carries the same
// TTL as the session row it mirrors.
type RedisSessionCache struct {
	client redis.UniversalClient
}

// NewRedisSessionCache wraps a connected Redis client as a SessionCache.
func NewRedisSessionCache(client redis.UniversalClient) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

// Get returns the cached session or errSessionCacheMiss.
func (c *RedisSessionCache) Get(ctx context.Context, token string) (*models.Session, error) {
	payload, err := c.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errSessionCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errSessionCacheMiss
	}
	return &session, nil
}

// Set stores the session with the supplied TTL.
func (c *RedisSessionCache) Set(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if session == nil || session.Token == "" || ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKeyPrefix+session.Token, payload, ttl).Err()
}

// Delete evicts the cached session for the token.
func (c *RedisSessionCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, sessionKeyPrefix+token).Err()
}
