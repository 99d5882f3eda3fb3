package upload

import (
	"context"
	"time"
)

const (
	// DefaultThrottle is the pause between finished units of work.
	DefaultThrottle = 100 * time.Millisecond

	// DefaultRetryDelay is the extra pause before resubmitting after a rate limit.
	DefaultRetryDelay = time.Second
)

// Policy controls pacing and retries.
type Policy struct {
	// Throttle is the pause between finished units.
	Throttle time.Duration

	// RetryDelay is added after the server-advised wait before resubmitting.
	RetryDelay time.Duration

	// MaxRetries caps resubmissions of one unit. Zero means no limit.
	MaxRetries int

	// RetryTransport resubmits after connection-level failures instead of
	// skipping the unit. MaxRetries applies.
	RetryTransport bool
}

// DefaultPolicy returns the default policy: unlimited retries on rate limits,
// transport failures skipped.
func DefaultPolicy() Policy {
	return Policy{
		Throttle:   DefaultThrottle,
		RetryDelay: DefaultRetryDelay,
	}
}

// WithMaxRetries sets the retry ceiling.
func (p Policy) WithMaxRetries(n int) Policy {
	p.MaxRetries = n
	return p
}

// WithRetryTransport sets whether transport failures are retried.
func (p Policy) WithRetryTransport(retry bool) Policy {
	p.RetryTransport = retry
	return p
}

// exhausted reports whether retries resubmissions have used up the ceiling.
func (p Policy) exhausted(retries int) bool {
	return p.MaxRetries > 0 && retries >= p.MaxRetries
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep waits for d, returning early with ctx.Err() if ctx is cancelled.
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
