package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/helpmepack/internal/trip"
)

// NewLimiter returns a limiter allowing rps requests per second with the given burst.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// RateLimitedSource wraps a trip.Source with a limiter. Several sources may
// share one limiter when they hit the same upstream account.
type RateLimitedSource struct {
	source  trip.Source
	limiter *rate.Limiter
}

var _ trip.Source = (*RateLimitedSource)(nil)

func NewRateLimitedSource(source trip.Source, limiter *rate.Limiter) *RateLimitedSource {
	return &RateLimitedSource{source: source, limiter: limiter}
}

func (r *RateLimitedSource) Name() string {
	return r.source.Name()
}

// FetchDay waits for the limiter, then forwards to the wrapped source.
func (r *RateLimitedSource) FetchDay(ctx context.Context, query string, day trip.DayID) (trip.DayResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return trip.DayResult{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.FetchDay(ctx, query, day)
}
