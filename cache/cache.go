// Package cache stores computed insights per owner so dashboards do not
// rescan every conversation on each request. Entries are dropped whenever the
// owner's people or conversations change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	// Get decodes the cached value into dst and reports whether it was there.
	Get(ctx context.Context, owner uint, field string, dst any) (bool, error)
	Set(ctx context.Context, owner uint, field string, v any) error
	Invalidate(ctx context.Context, owner uint) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, uint, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, uint, string, any) error         { return nil }
func (Nop) Invalidate(context.Context, uint) error               { return nil }

// Redis keeps one hash per owner, expiring ttl after the last write.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and checks the server answers.
func Connect(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return NewRedis(client, ttl), nil
}

func Key(owner uint) string {
	return fmt.Sprintf("seeds:insights:%d", owner)
}

func (r *Redis) Get(ctx context.Context, owner uint, field string, dst any) (bool, error) {
	data, err := r.client.HGet(ctx, Key(owner), field).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cached %s for owner %d: %w", field, owner, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s for owner %d: %w", field, owner, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, owner uint, field string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", field, err)
	}
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, Key(owner), field, data)
	pipe.Expire(ctx, Key(owner), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache %s for owner %d: %w", field, owner, err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, owner uint) error {
	if err := r.client.Del(ctx, Key(owner)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate insights for owner %d: %w", owner, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
