package ratelimit

import (
	"context"

	"github.com/noah-isme/toko-checkout/internal/resilience"
)

// FailoverLimiter consults Primary while Breaker allows it and Fallback
// otherwise. Primary errors are counted by the breaker and answered by
// Fallback, so limits stay enforced while Redis is unavailable.
type FailoverLimiter struct {
	Primary  Limiter
	Fallback Limiter
	Breaker  *resilience.Breaker
}

// Allow implements Limiter.
func (f FailoverLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if f.Breaker != nil && !f.Breaker.Allow(ctx) {
		return f.Fallback.Allow(ctx, key)
	}
	res, err := f.Primary.Allow(ctx, key)
	if f.Breaker != nil {
		f.Breaker.Report(ctx, err == nil)
	}
	if err != nil {
		return f.Fallback.Allow(ctx, key)
	}
	return res, nil
}
