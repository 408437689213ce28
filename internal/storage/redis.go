// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultKeyPrefix namespaces widget keys in a shared redis.
const DefaultKeyPrefix = "opsdesk:"

// Redis is a Store backed by a redis server. It lets several terminals share
// one session id.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis connects to redis and verifies the connection with PING.
func OpenRedis(ctx context.Context, opts Options) (*Redis, error) {
	if opts.RedisAddr == "" {
		return nil, errors.New("storage: redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{rdb: rdb, prefix: prefix}, nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, r.wrap(err)
	}
	return v, true, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.wrap(r.rdb.Set(ctx, r.prefix+key, value, 0).Err())
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.wrap(r.rdb.Del(ctx, r.prefix+key).Err())
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("redis: %w", err)
}
