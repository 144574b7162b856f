package draft

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores persisted drafts in Redis with a sliding expiry.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlot(addr string, ttl time.Duration) *RedisSlot {
	return NewRedisSlotWithClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

func NewRedisSlotWithClient(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func (r *RedisSlot) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisSlot) Save(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisSlot) Clear(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisSlot) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisSlot) Close() error {
	return r.client.Close()
}
