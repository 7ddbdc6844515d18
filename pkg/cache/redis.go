package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis configuration
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConn,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Close gracefully closes the Redis client
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// GetClientStats returns Redis client statistics
func GetClientStats(client *redis.Client) map[string]interface{} {
	stats := client.PoolStats()
	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

// ResponseCache stores serialized responses under an idempotency key
type ResponseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewResponseCache creates a cache whose keys are "<prefix>:<key>"
func NewResponseCache(client *redis.Client, prefix string, ttl time.Duration) *ResponseCache {
	return &ResponseCache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the cached body and whether it was present
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores body for the configured TTL
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) error {
	return c.client.Set(ctx, c.key(key), body, c.ttl).Err()
}

func (c *ResponseCache) key(key string) string {
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// ListLog is a capped, newest-first JSON log kept in a Redis list
type ListLog struct {
	client *redis.Client
	key    string
	max    int64
}

// NewListLog creates a log under key holding at most max entries
func NewListLog(client *redis.Client, key string, max int64) *ListLog {
	if max <= 0 {
		max = 1000
	}
	return &ListLog{client: client, key: key, max: max}
}

// Push prepends entry and trims the list to its cap
func (l *ListLog) Push(ctx context.Context, entry interface{}) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, l.key, data)
	pipe.LTrim(ctx, l.key, 0, l.max-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to n of the newest entries
func (l *ListLog) Recent(ctx context.Context, n int64) ([]json.RawMessage, error) {
	if n <= 0 {
		n = l.max
	}
	items, err := l.client.LRange(ctx, l.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item))
	}
	return out, nil
}
