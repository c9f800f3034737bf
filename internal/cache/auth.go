package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userdesk/userdesk/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for cached auth contexts.
	authCachePrefix = "auth:ctx:"
	// userIndexPrefix is the Redis key prefix for the set of auth cache keys per user.
	userIndexPrefix = "auth:user:"
	// authCacheTTL bounds how long a revoked or orphaned key keeps working
	// if invalidation is missed.
	authCacheTTL = 5 * time.Minute
)

// cachedAuthContext is the JSON shape stored in Redis.
type cachedAuthContext struct {
	KeyID     string   `json:"key_id"`
	KeyPrefix string   `json:"key_prefix"`
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Scopes    []string `json:"scopes"`
}

// GetAuthContext retrieves a cached auth context.
// Returns nil, nil on a cache miss or a corrupted entry.
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	data, err := c.client.Get(ctx, authKey(cacheKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get auth context: %w", err)
	}

	var cached cachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		KeyID:     cached.KeyID,
		KeyPrefix: cached.KeyPrefix,
		UserID:    cached.UserID,
		Username:  cached.Username,
		Scopes:    cached.Scopes,
	}, nil
}

// SetAuthContext caches an auth context and records it in the owner's index
// so it can be dropped when the owner is deleted.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error {
	data, err := json.Marshal(cachedAuthContext{
		KeyID:     auth.KeyID,
		KeyPrefix: auth.KeyPrefix,
		UserID:    auth.UserID,
		Username:  auth.Username,
		Scopes:    auth.Scopes,
	})
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	index := userIndexKey(auth.UserID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, authKey(cacheKey), data, c.ttl)
		pipe.SAdd(ctx, index, cacheKey)
		pipe.Expire(ctx, index, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set auth context: %w", err)
	}
	return nil
}

// InvalidateUserAuthContexts removes every cached auth context owned by userID.
func (c *Cache) InvalidateUserAuthContexts(ctx context.Context, userID string) error {
	index := userIndexKey(userID)

	members, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("list cached auth contexts: %w", err)
	}

	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, authKey(m))
	}
	keys = append(keys, index)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cached auth contexts: %w", err)
	}
	return nil
}

func authKey(cacheKey string) string {
	return authCachePrefix + cacheKey
}

func userIndexKey(userID string) string {
	return userIndexPrefix + userID
}
