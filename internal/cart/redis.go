package cart

import (
	"context"
	"time"
)

type redisKV interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(name string) string
}

// RedisBlob persists cart blobs in redis under namespaced cart keys. Every save
// refreshes the TTL, so an idle cart eventually expires.
type RedisBlob struct {
	client redisKV
	ttl    time.Duration
}

// NewRedisBlob wraps a pkg/redis client.
func NewRedisBlob(client redisKV, ttl time.Duration) *RedisBlob {
	return &RedisBlob{client: client, ttl: ttl}
}

func (r *RedisBlob) Load(ctx context.Context, key string) ([]byte, error) {
	return r.client.GetBytes(ctx, r.client.CartKey(key))
}

func (r *RedisBlob) Save(ctx context.Context, key string, blob []byte) error {
	return r.client.Set(ctx, r.client.CartKey(key), blob, r.ttl)
}

func (r *RedisBlob) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.CartKey(key))
}

// Close is a no-op; the redis client is owned by the caller.
func (r *RedisBlob) Close() error {
	return nil
}
