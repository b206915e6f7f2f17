package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisRateCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cli.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisRateCache(cli, log), mr
}

func TestRedisRateCacheSetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "usd_rub_rate", 92.5, time.Hour))

	v, found, err := c.Get(ctx, "usd_rub_rate")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 92.5, v)
}

func TestRedisRateCacheMissOnAbsentKey(t *testing.T) {
	c, _ := newTestCache(t)

	_, found, err := c.Get(context.Background(), "usd_rub_rate")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisRateCacheTTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "usd_rub_rate", 92.5, time.Hour))

	_, found, err := c.Get(ctx, "usd_rub_rate")
	require.NoError(t, err)
	require.True(t, found)

	mr.FastForward(time.Hour)

	_, found, err = c.Get(ctx, "usd_rub_rate")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisRateCacheDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "usd_rub_rate", 92.5, time.Hour))
	require.NoError(t, c.Delete(ctx, "usd_rub_rate"))

	_, found, err := c.Get(ctx, "usd_rub_rate")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisRateCacheUnavailableReportsErrorAndMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	mr.Close()

	_, found, err := c.Get(ctx, "usd_rub_rate")
	assert.Error(t, err)
	assert.False(t, found)

	assert.Error(t, c.Set(ctx, "usd_rub_rate", 1, time.Hour))
}

func TestRedisRateCacheUnparseableValueIsMiss(t *testing.T) {
	c, mr := newTestCache(t)

	mr.Set("usd_rub_rate", "not-a-float")

	_, found, err := c.Get(context.Background(), "usd_rub_rate")
	assert.Error(t, err)
	assert.False(t, found)
}
