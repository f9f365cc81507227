package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a URLStore shared between processes. Use it when more than
// one server instance hands out presigned URLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the redis instance at url (redis://host:port/db).
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("url cache connected to redis", "addr", opts.Addr, "db", opts.DB)
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis get failed, treating as miss", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

// Set stores value for ttl less the same safety margin TimedLRU applies on
// read, so redis expires an entry before the URL inside it does.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	ttl = redisTTL(ttl)
	if ttl <= 0 {
		return
	}
	err := s.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		slog.Warn("redis set failed", "key", key, "error", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	err := s.client.Del(ctx, key).Err()
	if err != nil {
		slog.Warn("redis delete failed", "key", key, "error", err)
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisTTL(ttl time.Duration) time.Duration {
	return ttl - expiryMargin
}
