package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the Redis backend cannot be reached.
var ErrRedisUnavailable = errors.New("credential redis unavailable")

// RedisBackend is a Redis-backed [Backend]. Credentials survive process
// restarts, which is what makes page-reload hydration work for hosts that
// keep no local disk state.
type RedisBackend struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a [RedisBackend] on the given client. prefix
// namespaces every credential key; empty falls back to "pa".
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "pa"
	}
	return &RedisBackend{
		redis:  client,
		prefix: prefix,
	}
}

func (b *RedisBackend) key(key string) string {
	return b.prefix + ":" + key
}

// Get returns the stored value for key, or false when absent.
func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.redis.Get(ctx, b.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return v, true, nil
}

// Set stores value under key, replacing any prior value.
func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.redis.Set(ctx, b.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes every named key in a single round-trip.
func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, b.key(k))
	}
	if err := b.redis.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
