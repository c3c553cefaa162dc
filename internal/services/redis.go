package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const (
	searchCacheTTL      = time.Minute
	unreadCountCacheTTL = 5 * time.Minute
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheSearchPage stores a serialized trip search response page.
func CacheSearchPage(ctx context.Context, key string, payload []byte) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Set(ctx, "trips:search:"+key, payload, searchCacheTTL).Err()
}

// GetCachedSearchPage retrieves a cached trip search response page.
func GetCachedSearchPage(ctx context.Context, key string) ([]byte, bool) {
	if RedisClient == nil {
		return nil, false
	}
	data, err := RedisClient.Get(ctx, "trips:search:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// InvalidateSearchCache drops all cached search pages. Called whenever a
// trip or its seat count changes.
func InvalidateSearchCache(ctx context.Context) {
	if RedisClient == nil {
		return
	}
	iter := RedisClient.Scan(ctx, 0, "trips:search:*", 100).Iterator()
	for iter.Next(ctx) {
		RedisClient.Del(ctx, iter.Val())
	}
}

func unreadCountKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// SetUnreadCount caches a user's unread notification count.
func SetUnreadCount(ctx context.Context, userID uint, count int64) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Set(ctx, unreadCountKey(userID), count, unreadCountCacheTTL).Err()
}

// GetUnreadCount retrieves a cached unread notification count.
func GetUnreadCount(ctx context.Context, userID uint) (int64, bool) {
	if RedisClient == nil {
		return 0, false
	}
	count, err := RedisClient.Get(ctx, unreadCountKey(userID)).Int64()
	if err != nil {
		return 0, false
	}
	return count, true
}

// InvalidateUnreadCount drops the cached count after a notification write
// or read-state change.
func InvalidateUnreadCount(ctx context.Context, userID uint) {
	if RedisClient == nil {
		return
	}
	RedisClient.Del(ctx, unreadCountKey(userID))
}
