package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "galleryhub:cache:"

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects and pings; a nil error means the store is usable. The
// caller falls back to the in-process cache when the ping fails.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	ttl := cfg.TTL

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Redis{client: client, ttl: ttl}, nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()

	if err != nil {
		return nil, false
	}

	return val, true
}

func (c *Redis) Set(ctx context.Context, key string, val []byte) {
	// Cache writes are best effort; a redis hiccup must not fail the request.
	_ = c.client.Set(ctx, redisKeyPrefix+key, val, c.ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (c *Redis) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()

	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}

func (c *Redis) Close() error {
	return c.client.Close()
}
