package cachesvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/college/core"
)

// RedisCache shares entries between instances. Keys are namespaced with the app name.
type RedisCache struct {
	client *redis.Client
	prefix string
}

var _ core.Cache = (*RedisCache)(nil)

// NewRedisCache connects to the redis server at url, eg: redis://localhost:6379/0.
func NewRedisCache(ctx context.Context, url, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

func (c *RedisCache) key(k core.CacheKey) string {
	if c.prefix == "" {
		return k.String()
	}
	return c.prefix + ":" + k.String()
}

func (c *RedisCache) Get(ctx context.Context, key core.CacheKey) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "getting %s", key)
	}
	return val, true, nil
}

// Set stores value for ttl; a ttl <= 0 never expires.
func (c *RedisCache) Set(ctx context.Context, key core.CacheKey, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return errors.Wrapf(c.client.Set(ctx, c.key(key), value, ttl).Err(), "setting %s", key)
}

func (c *RedisCache) Delete(ctx context.Context, key core.CacheKey) error {
	return errors.Wrapf(c.client.Del(ctx, c.key(key)).Err(), "deleting %s", key)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
