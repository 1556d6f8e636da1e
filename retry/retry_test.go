package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimesAllowsExactlyNRetries(t *testing.T) {
	policy := Times(3)
	start := time.Now()

	for attempt := 1; attempt <= 3; attempt++ {
		_, retry := policy.ShouldRetry(start, attempt)
		assert.True(t, retry, "attempt %d should retry", attempt)
	}

	_, retry := policy.ShouldRetry(start, 4)
	assert.False(t, retry)
}

func TestResumeInstantWithinJitterBounds(t *testing.T) {
	policy := &ExponentialBackoff{
		MaxRetries:   5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
	}
	start := time.Now()

	for attempt := 1; attempt <= 5; attempt++ {
		before := time.Now()
		resumeAt, retry := policy.ShouldRetry(start, attempt)
		require.True(t, retry)

		// Full jitter: resume instant falls in [now, now+cap).
		assert.False(t, resumeAt.Before(before))
		assert.True(t, resumeAt.Before(before.Add(time.Second+50*time.Millisecond)))
	}
}

func TestMaxElapsedDeadline(t *testing.T) {
	policy := &ExponentialBackoff{
		MaxRetries: 100,
		MaxElapsed: time.Minute,
	}

	_, retry := policy.ShouldRetry(time.Now(), 1)
	assert.True(t, retry)

	_, retry = policy.ShouldRetry(time.Now().Add(-2*time.Minute), 1)
	assert.False(t, retry)
}

func TestZeroRetriesNeverRetries(t *testing.T) {
	_, retry := Times(0).ShouldRetry(time.Now(), 1)
	assert.False(t, retry)
}

func TestDelayDoublesUpToCap(t *testing.T) {
	policy := &ExponentialBackoff{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     400 * time.Millisecond,
	}

	// Jittered delays never exceed the exponential ceiling for the attempt.
	for i := 0; i < 50; i++ {
		assert.Less(t, policy.delay(0), 100*time.Millisecond)
		assert.Less(t, policy.delay(1), 200*time.Millisecond)
		assert.Less(t, policy.delay(10), 400*time.Millisecond)
	}
}

func TestPolicyFunc(t *testing.T) {
	resume := time.Now().Add(time.Second)
	var policy Policy = PolicyFunc(func(_ time.Time, attempt int) (time.Time, bool) {
		return resume, attempt < 2
	})

	at, retry := policy.ShouldRetry(time.Now(), 1)
	assert.True(t, retry)
	assert.Equal(t, resume, at)

	_, retry = policy.ShouldRetry(time.Now(), 2)
	assert.False(t, retry)
}
