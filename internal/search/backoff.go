package search

import (
	"context"
	"math/rand/v2"
	"time"
)

// Default backoff bounds between attempts.
const (
	DefaultBackoffMin = 1 * time.Second
	DefaultBackoffMax = 3 * time.Second
)

// Backoff returns the delay to wait before the next attempt.
type Backoff func() time.Duration

// Sleeper waits for d or until ctx is done, whichever comes first.
// It returns ctx.Err() when the wait was cut short.
type Sleeper func(ctx context.Context, d time.Duration) error

// JitterBackoff returns a Backoff that draws uniformly from [minDelay, maxDelay].
// A nil rnd uses the global generator. When maxDelay <= minDelay the delay
// is always minDelay.
func JitterBackoff(minDelay, maxDelay time.Duration, rnd *rand.Rand) Backoff {
	return func() time.Duration {
		if maxDelay <= minDelay {
			return minDelay
		}
		span := int64(maxDelay-minDelay) + 1
		if rnd != nil {
			return minDelay + time.Duration(rnd.Int64N(span))
		}
		return minDelay + time.Duration(rand.Int64N(span)) //nolint:gosec // Jitter, not security
	}
}

// NoBackoff returns a Backoff that never waits.
func NoBackoff() Backoff {
	return func() time.Duration { return 0 }
}

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
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
