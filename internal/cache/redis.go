package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache key formats
const (
	UnreadCountKeyFmt = "notifications:unread:%d"
	ProjectListKey    = "projects:all"
	EmployeeListKey   = "employees:all"
)

var client *redis.Client

// Init initializes the Redis connection
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// UnreadCountKey builds the cache key for a recipient's unread counter
func UnreadCountKey(recipientID int) string {
	return fmt.Sprintf(UnreadCountKeyFmt, recipientID)
}

// InvalidateWorkLogCaches clears all work log list caches
// Called when: Create, Update, Submit, Approve, Delete
func InvalidateWorkLogCaches(ctx context.Context) {
	InvalidatePattern(ctx, "logs:*")
}

// InvalidateNotificationCaches clears a recipient's notification caches
// Called when: notifications are created, MarkRead, MarkAllRead
func InvalidateNotificationCaches(ctx context.Context, recipientID int) {
	InvalidateKeys(ctx, UnreadCountKey(recipientID))
}

// InvalidateProjectCaches clears reference data caches
// Called when: CreateProject, CreateEmployee
func InvalidateProjectCaches(ctx context.Context) {
	InvalidateKeys(ctx, ProjectListKey, EmployeeListKey)
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
