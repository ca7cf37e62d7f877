package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client), mr
}

func TestRedisSetGetRemove(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "app:abc", []byte(`{"id":"1"}`), time.Minute))

	got, ok, err := c.Get(ctx, "app:abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"id":"1"}`, string(got))

	require.NoError(t, c.Remove(ctx, "app:abc"))
	require.NoError(t, c.Remove(ctx, "app:abc"))

	_, ok, err = c.Get(ctx, "app:abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Second))
	require.Equal(t, 10*time.Second, mr.TTL("k"))

	mr.FastForward(11 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisGetError(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	mr.Close()

	_, _, err := c.Get(ctx, "k")
	require.Error(t, err)
}
