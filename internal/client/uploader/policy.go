package uploader

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy holds the backoff rules the Scheduler applies between attempts.
// The attempt budget itself (models.MaxUploadAttempts) is enforced by the
// Worker, which is the only place that knows whether a failure consumed it.
type RetryPolicy struct {
	// MinBackoff is the first retry interval; subsequent intervals double.
	MinBackoff time.Duration

	// MaxBackoff caps the interval growth. Zero means uncapped.
	MaxBackoff time.Duration
}

// DefaultRetryPolicy mirrors the platform scheduler defaults: exponential
// backoff from 30 seconds, capped at 15 minutes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MinBackoff: 30 * time.Second,
		MaxBackoff: 15 * time.Minute,
	}
}

// Backoff builds a fresh backoff sequence for one record's retry loop.
func (p RetryPolicy) Backoff() retry.Backoff {
	base := p.MinBackoff
	if base <= 0 {
		base = DefaultRetryPolicy().MinBackoff
	}
	b := retry.NewExponential(base)
	if p.MaxBackoff > 0 {
		b = retry.WithCappedDuration(p.MaxBackoff, b)
	}
	return b
}
