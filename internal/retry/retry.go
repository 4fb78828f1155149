// Package retry wraps failure-prone operations with bounded exponential
// backoff, distinguishing transient upstream failures from fatal errors.
package retry

import (
	"context"
	"log"
	"math/rand"
	"time"
)

// Default policy values.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1 * time.Second
	DefaultMaxDelay   = 60 * time.Second
)

// transientStatusCodes are the upstream status codes worth retrying.
var transientStatusCodes = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
}

// Policy configures retry behavior. It is an explicit value passed to Do;
// there is no process-wide retry state.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt, so the
	// total attempt count is MaxRetries+1.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
}

// DefaultPolicy returns the standard policy: 3 retries, 1s base, 60s cap.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// Delay returns the backoff before retry attempt i (0-indexed). Rate-limit
// failures get a uniform jitter in [0,1)s added before the cap is applied,
// so the result is min(base*2^i + jitter, max); other transient failures
// get min(base*2^i, max).
func (p Policy) Delay(attempt int, rateLimited bool) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d <= 0 {
		// Shift overflow; clamp straight to the cap.
		return p.MaxDelay
	}
	if rateLimited {
		d += time.Duration(rand.Float64() * float64(time.Second))
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do invokes op, retrying on transient failures per the policy. Fatal errors
// propagate immediately. When retries are exhausted the last error is
// returned unchanged, so callers always see the original error type.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		rateLimited := IsRateLimit(err)
		if !rateLimited && !isTransient(err) {
			return zero, err
		}
		if attempt >= policy.MaxRetries {
			return zero, err
		}

		delay := policy.Delay(attempt, rateLimited)
		if rateLimited {
			log.Printf("[retry] rate limited, retrying in %.2fs (attempt %d/%d): %v",
				delay.Seconds(), attempt+1, policy.MaxRetries+1, err)
		} else {
			log.Printf("[retry] transient upstream error, retrying in %.2fs (attempt %d/%d): %v",
				delay.Seconds(), attempt+1, policy.MaxRetries+1, err)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}

// isTransient reports whether err carries an upstream status code in the
// transient set.
func isTransient(err error) bool {
	code, ok := StatusCode(err)
	return ok && transientStatusCodes[code]
}
