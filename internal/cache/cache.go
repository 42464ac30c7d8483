// Package cache wraps the redis client configured by REDIS_URL.
package cache

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Cache is a lazily connected redis client.
type Cache struct {
	client *redis.Client
}

// New parses the redis url. No connection is made until the first command.
func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse redis url")
	}

	return &Cache{client: redis.NewClient(opts)}, nil
}

// Client exposes the underlying redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Addr returns host:port of the redis server.
func (c *Cache) Addr() string {
	return c.client.Options().Addr
}

// PingContext checks the connection.
func (c *Cache) PingContext(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis ping failed")
	}

	return nil
}

// Close closes the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
