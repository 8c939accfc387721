package ratelimit

import (
	"context"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Result reports the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// MemoryLimiter is a fixed-window limiter kept in process memory. It is used
// when no Redis is configured.
type MemoryLimiter struct {
	l *limiter.Limiter
}

// NewMemoryLimiter allows max requests per window for each key.
func NewMemoryLimiter(window time.Duration, max int) *MemoryLimiter {
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	return &MemoryLimiter{l: limiter.New(memory.NewStore(), rate)}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	lc, err := m.l.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Allowed:   !lc.Reached,
		Limit:     int(lc.Limit),
		Remaining: int(lc.Remaining),
		Reset:     time.Unix(lc.Reset, 0),
	}, nil
}
