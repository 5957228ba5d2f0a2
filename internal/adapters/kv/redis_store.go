package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"noor-service/internal/platform/obs"
)

// RedisStore keeps key-value pairs in Redis under a common prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore parses a redis:// URL and verifies the connection.
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis store: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis store: ping: %w", err)
	}

	return NewRedisStoreFromClient(client, prefix), nil
}

func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "kv.redis.Get")(&err)

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get key=%q: %w", key, err)
	}

	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) (err error) {
	defer obs.Time(ctx, "kv.redis.Set")(&err)

	if strings.TrimSpace(key) == "" {
		return errors.New("kv set: key must be non-empty")
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("kv set key=%q: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (err error) {
	defer obs.Time(ctx, "kv.redis.Delete")(&err)

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("kv delete key=%q: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
