package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskdeck/internal/config"
	"taskdeck/pkg/logger"
)

// Cache is a read-through cache for list endpoints, storing the serialized
// response bytes per user scope. A Cache with no reachable Redis degrades to
// a no-op: every read misses, every write is dropped.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. Connection failure is logged, not fatal.
func New(ctx context.Context, cfg *config.Config) *Cache {
	c := &Cache{ttl: time.Duration(cfg.CacheTTL) * time.Second}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
		return c
	}
	opts.PoolSize = cfg.RedisPoolSize
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "Redis unavailable, cache disabled", "error", err)
		return c
	}
	c.client = client
	logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	return c
}

// Ready reports whether Redis answers a ping.
func (c *Cache) Ready(ctx context.Context) bool {
	return c.client != nil && c.client.Ping(ctx).Err() == nil
}

func projectsKey(userID int64) string {
	return fmt.Sprintf("projects:user:%d", userID)
}

func todosKey(userID, projectID int64) string {
	return fmt.Sprintf("todos:user:%d:project:%d", userID, projectID)
}

// GetProjects reads the cached project-list bytes. (nil, false) on miss.
func (c *Cache) GetProjects(ctx context.Context, userID int64) ([]byte, bool) {
	return c.get(ctx, projectsKey(userID))
}

// SetProjects caches the serialized project list.
func (c *Cache) SetProjects(ctx context.Context, userID int64, b []byte) {
	c.set(ctx, projectsKey(userID), b)
}

// GetTodos reads the cached todo-list bytes for one project scope.
func (c *Cache) GetTodos(ctx context.Context, userID, projectID int64) ([]byte, bool) {
	return c.get(ctx, todosKey(userID, projectID))
}

// SetTodos caches the serialized todo list for one project scope.
func (c *Cache) SetTodos(ctx context.Context, userID, projectID int64, b []byte) {
	c.set(ctx, todosKey(userID, projectID), b)
}

// InvalidateProjects drops the cached project list for a user.
func (c *Cache) InvalidateProjects(ctx context.Context, userID int64) {
	c.del(ctx, projectsKey(userID))
}

// InvalidateTodos drops the cached todo list for one project scope.
func (c *Cache) InvalidateTodos(ctx context.Context, userID, projectID int64) {
	c.del(ctx, todosKey(userID, projectID))
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get failed", "error", err, "key", key)
		return nil, false
	}
	return b, true
}

func (c *Cache) set(ctx context.Context, key string, b []byte) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set failed", "error", err, "key", key)
	}
}

func (c *Cache) del(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Debug(ctx, "Redis del failed", "error", err, "key", key)
	}
}
