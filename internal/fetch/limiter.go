package fetch

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces outgoing market requests. It keeps a single cursor holding the
// next time a request may be sent; every caller reserves the slot at the cursor
// and pushes it forward by the spacing, so concurrent callers interleave their
// delays without blocking each other.
type Limiter struct {
	mu      sync.Mutex
	next    time.Time
	spacing time.Duration
	now     func() time.Time
}

// NewLimiter creates a limiter with the given spacing. A nil clock means time.Now.
func NewLimiter(spacing time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	if spacing <= 0 {
		spacing = time.Millisecond
	}
	return &Limiter{
		next:    now(),
		spacing: spacing,
		now:     now,
	}
}

// Delay reserves the next request slot and returns how long to wait for it.
func (l *Limiter) Delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.next) {
		l.next = now.Add(l.spacing)
		return 0
	}
	d := l.next.Sub(now)
	l.next = l.next.Add(l.spacing)
	return d
}

// Wait blocks until the reserved slot is reached or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	d := l.Delay()
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

// limiterBackOff makes the retry schedule follow the request spacing.
type limiterBackOff struct {
	limiter *Limiter
}

func (b *limiterBackOff) NextBackOff() time.Duration {
	return b.limiter.Delay()
}

func (b *limiterBackOff) Reset() {}
