package ports

import (
	"context"
	"time"
)

// Port: a time-bounded key/value boundary for the exchange rate.
//
// The cache is a pure optimization: implementations report their own
// transient failures through err while still returning found == false, and
// callers must treat any error as a miss rather than a hard failure.
type RateCache interface {
	Get(ctx context.Context, key string) (value float64, found bool, err error)
	Set(ctx context.Context, key string, value float64, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
