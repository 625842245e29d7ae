package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV keeps preferences in Redis string keys.
type RedisKV struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisKV wraps client. Keys expire ttl after their last write; zero keeps
// them forever.
func NewRedisKV(client redis.UniversalClient, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

// DialRedis connects to a single Redis node and verifies it answers.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("prefs: redis %s: %w", addr, err)
	}
	return c, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("prefs: redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("prefs: redis set %s: %w", key, err)
	}
	return nil
}

// maxTxAttempts bounds optimistic retries when another writer changes the key
// between WATCH and EXEC.
const maxTxAttempts = 10

// Update runs f inside a WATCH/MULTI transaction and retries when the key
// was modified concurrently.
func (r *RedisKV) Update(ctx context.Context, key string, f UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, key).Result()
		found := true
		switch {
		case errors.Is(err, redis.Nil):
			found = false
		case err != nil:
			return err
		}
		next, err := f(old, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, next, r.ttl)
			return nil
		})
		return err
	}

	for range maxTxAttempts {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("prefs: redis update %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("prefs: redis update %s: %w", key, redis.TxFailedErr)
}
