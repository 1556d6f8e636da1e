// Package retry defines the pluggable retry policy consumed by the client's
// retry middleware, plus an exponential backoff implementation of it.
package retry

import (
	crand "crypto/rand"
	"math/big"
	"time"
)

const (
	// DefaultInitialDelay is the base delay for the first retry
	DefaultInitialDelay = 500 * time.Millisecond

	// DefaultMaxDelay caps the delay between retries
	DefaultMaxDelay = 30 * time.Second
)

// Policy decides whether a failed attempt should be retried and when the
// next attempt may resume. start is the wall-clock time of the first attempt;
// attempt counts failures so far, starting at 1.
type Policy interface {
	ShouldRetry(start time.Time, attempt int) (resumeAt time.Time, retry bool)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(start time.Time, attempt int) (time.Time, bool)

// ShouldRetry calls f.
func (f PolicyFunc) ShouldRetry(start time.Time, attempt int) (time.Time, bool) {
	return f(start, attempt)
}

// ExponentialBackoff retries up to MaxRetries times, doubling the delay per
// attempt with full jitter. A zero-valued field falls back to its default.
type ExponentialBackoff struct {
	// MaxRetries bounds the number of retries after the initial attempt.
	MaxRetries int

	// InitialDelay is the base delay, doubled on every subsequent attempt.
	InitialDelay time.Duration

	// MaxDelay caps the computed delay.
	MaxDelay time.Duration

	// MaxElapsed, when positive, stops retrying once that much wall-clock
	// time has passed since the first attempt.
	MaxElapsed time.Duration
}

var _ Policy = (*ExponentialBackoff)(nil)

// Times creates an ExponentialBackoff allowing n retries with defaults.
func Times(n int) *ExponentialBackoff {
	return &ExponentialBackoff{MaxRetries: n}
}

// ShouldRetry implements Policy.
func (p *ExponentialBackoff) ShouldRetry(start time.Time, attempt int) (time.Time, bool) {
	if attempt > p.MaxRetries {
		return time.Time{}, false
	}
	if p.MaxElapsed > 0 && time.Since(start) >= p.MaxElapsed {
		return time.Time{}, false
	}
	return time.Now().Add(p.delay(attempt - 1)), true
}

// delay returns the jittered exponential delay for the given zero-based
// attempt index.
func (p *ExponentialBackoff) delay(attempt int) time.Duration {
	base := p.InitialDelay
	if base <= 0 {
		base = DefaultInitialDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	// Cap attempt to avoid overflow when computing the multiplier
	if attempt > 20 { // 2^20 = 1,048,576
		attempt = 20
	}
	d := base * time.Duration(1<<attempt)
	if d > maxDelay || d <= 0 {
		d = maxDelay
	}

	// Full jitter: random duration in [0, d)
	n, err := crand.Int(crand.Reader, big.NewInt(int64(d)))
	if err != nil {
		// On RNG failure, fall back to the full delay
		return d
	}
	return time.Duration(n.Int64())
}
