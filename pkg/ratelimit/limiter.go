package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out the requests of one collection. Wait is called by task
// index before the task issues its first request and blocks until the task
// may proceed or ctx is done.
type Pacer interface {
	Wait(ctx context.Context, index int) error
}

// Staggered delays task i by Step*i from the moment Wait is called. Tasks
// launched together therefore start Step apart.
type Staggered struct {
	Step time.Duration
}

func (s Staggered) Wait(ctx context.Context, index int) error {
	return sleep(ctx, s.Step*time.Duration(index))
}

// Batch returns the pacer to use for one batch of tasks starting now. A
// Staggered pacer is pinned to that start, so task i begins no earlier than
// start+Step*i however long it waited for a worker slot. Other pacers are
// returned unchanged.
func Batch(p Pacer) Pacer {
	if s, ok := p.(Staggered); ok {
		return anchoredStagger{step: s.Step, start: time.Now()}
	}
	return p
}

type anchoredStagger struct {
	step  time.Duration
	start time.Time
}

func (a anchoredStagger) Wait(ctx context.Context, index int) error {
	return sleep(ctx, time.Until(a.start.Add(a.step*time.Duration(index))))
}

// Fixed waits Delay before every task regardless of index. It is meant for
// sequential loops, where the delays add up.
type Fixed struct {
	Delay time.Duration
}

func (f Fixed) Wait(ctx context.Context, _ int) error {
	return sleep(ctx, f.Delay)
}

// TokenRate admits tasks through a shared token bucket, so the request rate
// holds regardless of how many tasks run at once.
type TokenRate struct {
	limiter *rate.Limiter
}

// NewTokenRate creates a TokenRate admitting perSecond tasks per second with
// the given burst.
func NewTokenRate(perSecond float64, burst int) (*TokenRate, error) {
	if perSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive, got %v", perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenRate{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}, nil
}

func (t *TokenRate) Wait(ctx context.Context, _ int) error {
	return t.limiter.Wait(ctx)
}

// None never waits.
type None struct{}

func (None) Wait(ctx context.Context, _ int) error {
	return ctx.Err()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
