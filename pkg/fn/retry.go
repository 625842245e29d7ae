package fn

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryOpts configures Retry.
type RetryOpts struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Jitter      bool
	// OnRetry, when set, is called after each failed attempt that will be
	// retried.
	OnRetry func(attempt int, err error)
	// Retryable, when set, stops retrying as soon as it returns false.
	Retryable func(err error) bool
}

// DefaultRetry is used by remote catalog sources.
var DefaultRetry = RetryOpts{
	MaxAttempts: 3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Jitter:      true,
}

// Retry calls f until it succeeds, MaxAttempts is reached, the error is not
// Retryable or ctx is done.
// Waits double after every failure and are capped at MaxWait.
func Retry[T any](ctx context.Context, opts RetryOpts, f func(context.Context) Result[T]) Result[T] {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	wait := opts.InitialWait
	var r Result[T]
	for attempt := 1; ; attempt++ {
		r = f(ctx)
		if r.IsOk() || attempt >= opts.MaxAttempts {
			return r
		}
		if opts.Retryable != nil && !opts.Retryable(r.Error()) {
			return r
		}
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, r.Error())
		}

		sleep := wait
		if opts.Jitter {
			sleep = time.Duration(float64(wait) * (0.5 + rand.Float64()))
		}
		if opts.MaxWait > 0 && sleep > opts.MaxWait {
			sleep = opts.MaxWait
		}
		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return Err[T](ctx.Err())
		case <-t.C:
		}

		wait *= 2
		if opts.MaxWait > 0 && wait > opts.MaxWait {
			wait = opts.MaxWait
		}
	}
}
