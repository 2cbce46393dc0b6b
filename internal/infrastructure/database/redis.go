package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct{ *redis.Client }

func NewRedis(addr, pass string, db int) *RedisClient {
	return &RedisClient{redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (c *RedisClient) Ping(ctx context.Context) error { return c.Client.Ping(ctx).Err() }

// Helpers

// SetNX stores val under key only if the key is absent and returns the value now held by key
func SetNX(ctx context.Context, r *redis.Client, key string, val string, ttl time.Duration) (string, bool, error) {
	ok, err := r.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return val, true, nil
	}
	current, err := r.Get(ctx, key).Result()
	if err != nil {
		return "", false, err
	}
	return current, false, nil
}
