package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"parcel-delivery-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// Redis-backed implementation of the RateCache port. Values are stored as
// strconv-formatted floats under a single key with a TTL.
//
// Transient Redis failures are reported but must degrade to misses at the
// call site: the cache is an optimization, never a point of failure.
type RedisRateCache struct {
	cli *redis.Client
	log *slog.Logger
}

func NewRedisRateCache(cli *redis.Client, log *slog.Logger) *RedisRateCache {
	return &RedisRateCache{cli: cli, log: log}
}

var _ ports.RateCache = (*RedisRateCache)(nil)

func (c *RedisRateCache) Get(ctx context.Context, key string) (float64, bool, error) {
	s, err := c.cli.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil { // key absent or expired
			return 0, false, nil
		}
		c.log.Debug("cache get failed", slog.String("key", key), slog.String("error", err.Error()))
		return 0, false, fmt.Errorf("cache get %q: %w", key, err)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.log.Debug("cache parse failed", slog.String("key", key), slog.String("error", err.Error()))
		return 0, false, fmt.Errorf("cache parse value for %q: %w", key, err)
	}

	return v, true, nil
}

func (c *RedisRateCache) Set(ctx context.Context, key string, value float64, ttl time.Duration) error {
	s := strconv.FormatFloat(value, 'g', -1, 64)
	if err := c.cli.Set(ctx, key, s, ttl).Err(); err != nil {
		c.log.Debug("cache set failed", slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (c *RedisRateCache) Delete(ctx context.Context, key string) error {
	if err := c.cli.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %q: %w", key, err)
	}
	return nil
}
