package redis

import (
	"context"
	"errors"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"lottery/internal/observability/metrics"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Client wraps go-redis and exposes the string-value operations the cache
// layer needs.
type Client struct {
	rdb *goRedis.Client
}

// New creates a Redis client and verifies connectivity.
func New(addr string) (*Client, error) {
	rdb := goRedis.NewClient(&goRedis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Client{rdb: rdb}, nil
}

// Close shuts down the underlying Redis client.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get returns the value stored at key or ErrMiss.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	defer observe("get", time.Now())
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, goRedis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Set stores value at key. A zero ttl keeps the key until it is deleted.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	defer observe("set", time.Now())
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Del removes keys; missing keys are ignored.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	defer observe("del", time.Now())
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	defer observe("exists", time.Now())
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func observe(operation string, start time.Time) {
	metrics.ObserveRedisOperation(operation, time.Since(start))
}
