package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rc := NewRedisCache(addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, rc.Connect(context.Background()))
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	rc := newTestRedis(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	type payload struct {
		Name  string   `json:"name"`
		Books []string `json:"books"`
	}

	require.NoError(t, rc.Set(ctx, key, payload{Name: "鲁迅", Books: []string{"药"}}, time.Minute))

	var got payload
	found, err := rc.Get(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "鲁迅", got.Name)
	assert.Equal(t, []string{"药"}, got.Books)

	require.NoError(t, rc.Delete(ctx, key))
	found, err = rc.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Counter(t *testing.T) {
	rc := newTestRedis(t)
	ctx := context.Background()
	key := "test:gen:" + uuid.NewString()
	t.Cleanup(func() { _ = rc.Delete(context.Background(), key) })

	n, err := rc.GetInt(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = rc.Increment(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = rc.GetInt(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
