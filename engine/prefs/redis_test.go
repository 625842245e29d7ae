package prefs

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisKVUnavailable(t *testing.T) {
	c := unreachableClient()
	defer c.Close()
	kv := NewRedisKV(c, time.Hour)

	_, ok, err := kv.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, kv.Set(context.Background(), "k", "v"))

	s := New(kv, "s1", WithLogger(quiet()))
	assert.Empty(t, s.Favorites(context.Background()))
	assert.False(t, s.AddFavorite(context.Background(), 1))
}

func TestDialRedisFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DialRedis(ctx, "127.0.0.1:1", "", 0)
	assert.ErrorContains(t, err, "prefs: redis 127.0.0.1:1")
}

func TestRedisKVUpdateUnavailable(t *testing.T) {
	c := unreachableClient()
	defer c.Close()
	kv := NewRedisKV(c, 0)

	called := false
	err := kv.Update(context.Background(), "k", func(string, bool) (string, error) {
		called = true
		return "v", nil
	})
	assert.ErrorContains(t, err, "prefs: redis update k")
	assert.False(t, called)

	s := New(kv, "s1", WithLogger(quiet()))
	assert.Equal(t, ToggleFailed, s.ToggleComparison(context.Background(), 1))
}
