package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parcel-delivery-service/internal/ports"
)

// RateCacheKey is the single key the rate cache ever holds.
const RateCacheKey = "usd_rub_rate"

// DefaultRateTTL bounds how stale a cached rate may get.
const DefaultRateTTL = time.Hour

// RateService resolves the current USD/RUB rate cache-first with fallback
// to the remote authority. Cache failures degrade to fetching from source;
// only a source failure is an error.
type RateService struct {
	cache    ports.RateCache
	provider ports.RateProvider
	ttl      time.Duration
	log      *slog.Logger
}

func NewRateService(cache ports.RateCache, provider ports.RateProvider, ttl time.Duration, log *slog.Logger) *RateService {
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}
	return &RateService{cache: cache, provider: provider, ttl: ttl, log: log}
}

// CurrentRate returns the cached rate when fresh, otherwise fetches from
// the authority and repopulates the cache. A failed repopulation is logged
// and swallowed: the fetched rate is still good.
func (s *RateService) CurrentRate(ctx context.Context) (float64, error) {
	rate, found, err := s.cache.Get(ctx, RateCacheKey)
	if err != nil {
		s.log.Warn("rate cache unavailable, falling back to source",
			slog.String("error", err.Error()))
	}
	if found {
		return rate, nil
	}

	rate, err = s.provider.FetchRate(ctx)
	if err != nil {
		return 0, fmt.Errorf("current rate: %w", err)
	}

	if err := s.cache.Set(ctx, RateCacheKey, rate, s.ttl); err != nil {
		s.log.Warn("rate cache populate failed",
			slog.String("error", err.Error()))
	}

	return rate, nil
}

// Invalidate drops the cached rate so the next computation goes back to
// the authority. Administrative escape hatch.
func (s *RateService) Invalidate(ctx context.Context) error {
	if err := s.cache.Delete(ctx, RateCacheKey); err != nil {
		return fmt.Errorf("invalidate rate cache: %w", err)
	}
	return nil
}
