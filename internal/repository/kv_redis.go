package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/foodie/internal/port"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore expires entries after ttl; zero keeps them forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) port.KeyValueStore {
	return &redisStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	return data, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (r *redisStore) SetAll(ctx context.Context, entries []port.Entry) error {
	for _, e := range entries {
		if e.Key == "" {
			return fmt.Errorf("key is empty")
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Set(ctx, e.Key, e.Value, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("client.TxPipelined: %w", err)
	}

	return nil
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}
