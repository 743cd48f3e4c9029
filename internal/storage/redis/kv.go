// Package redis provides a Redis-backed kv.Store.
package redis

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/kart-storefront/internal/kv"
)

var _ kv.Store = (*KV)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// KV stores values as plain Redis strings without expiry.
type KV struct {
	rdb redis.UniversalClient
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*KV, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "ping redis %s", opts.Addr)
	}
	return &KV{rdb: rdb}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(rdb redis.UniversalClient) *KV {
	return &KV{rdb: rdb}
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, errors.Wrapf(err, "redis get %q", key)
	}
	return data, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %q", key)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *KV) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *KV) Close() error {
	return s.rdb.Close()
}
