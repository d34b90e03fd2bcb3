// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/crudkit/internal/platform/constants"
	"github.com/taibuivan/crudkit/internal/platform/permission"
)

// RedisPermissionCache implements [PermissionCache] using Redis.
//
// Entries hold the map in the token claim format, so a cached value and a
// token claim decode the same way.
type RedisPermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache creates a Redis-backed cache. A non-positive ttl selects
// the default lifetime.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *RedisPermissionCache {
	if ttl <= 0 {
		ttl = constants.DefaultPermissionCacheTTL
	}
	return &RedisPermissionCache{client: client, ttl: ttl}
}

// PermissionKey is the cache key of accountID.
func PermissionKey(accountID int64) string {
	return constants.RedisPrefixPermissions + strconv.FormatInt(accountID, 10)
}

/*
Get retrieves the cached map of accountID.

Returns:
  - permission.Map: nil on a miss
  - bool: whether the entry was present
  - error: connectivity or decoding failures
*/
func (cache *RedisPermissionCache) Get(context context.Context, accountID int64) (permission.Map, bool, error) {
	raw, err := cache.client.Get(context, PermissionKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis_permissions_get_failed: %w", err)
	}

	permissions, err := permission.ParseClaim(raw)
	if err != nil {
		return nil, false, fmt.Errorf("redis_permissions_decode_failed: %w", err)
	}

	return permissions, true, nil
}

// Set stores the map of accountID with the cache TTL.
func (cache *RedisPermissionCache) Set(context context.Context, accountID int64, permissions permission.Map) error {
	raw, err := permissions.MarshalClaim()
	if err != nil {
		return fmt.Errorf("redis_permissions_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, PermissionKey(accountID), raw, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_permissions_set_failed: %w", err)
	}

	return nil
}

// Invalidate removes the entry of accountID.
func (cache *RedisPermissionCache) Invalidate(context context.Context, accountID int64) error {
	if err := cache.client.Del(context, PermissionKey(accountID)).Err(); err != nil {
		return fmt.Errorf("redis_permissions_delete_failed: %w", err)
	}
	return nil
}
