package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache keys for the listing endpoints
const (
	CacheKeyArtworks = "artspace:artworks" // GET /api/artworks payload
	CacheKeyUsers    = "artspace:users"    // GET /api/users payload
)

// CacheTTL bounds how stale a cached listing can get if an invalidation is missed.
// A listing read that started before a mutation may store its result after the
// mutation's invalidation; that stale entry lives at most CacheTTL.
const CacheTTL = 60 * time.Second

// GetCache retrieves a value from Redis and unmarshals it into dest.
// A nil client behaves as a permanent cache miss.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil // Caching disabled
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}
