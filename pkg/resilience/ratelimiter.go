package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("resilience: rate limited")

// LimiterOpts configures a token bucket. A Rate of zero or less disables
// limiting.
type LimiterOpts struct {
	// Rate is the number of tokens added per second.
	Rate float64
	// Burst is the bucket capacity.
	Burst int
}

func (o LimiterOpts) limit() rate.Limit {
	if o.Rate <= 0 {
		return rate.Inf
	}
	return rate.Limit(o.Rate)
}

func (o LimiterOpts) burst() int {
	if o.Burst <= 0 {
		return 1
	}
	return o.Burst
}

// Limiter is a single token bucket.
type Limiter struct {
	lim *rate.Limiter
}

func NewLimiter(opts LimiterOpts) *Limiter {
	return &Limiter{lim: rate.NewLimiter(opts.limit(), opts.burst())}
}

// Allow takes a token if one is available without blocking.
func (l *Limiter) Allow() bool { return l.lim.Allow() }

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error { return l.lim.Wait(ctx) }

// KeyedLimiter keeps one bucket per key, for example per client address.
// Buckets idle for longer than the TTL are evicted by Sweep.
type KeyedLimiter struct {
	opts LimiterOpts
	ttl  time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewKeyedLimiter(opts LimiterOpts, ttl time.Duration) *KeyedLimiter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &KeyedLimiter{
		opts:    opts,
		ttl:     ttl,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Enabled reports whether any limiting takes place.
func (k *KeyedLimiter) Enabled() bool { return k.opts.Rate > 0 }

// Allow takes a token from key's bucket.
func (k *KeyedLimiter) Allow(key string) bool {
	if !k.Enabled() {
		return true
	}
	k.mu.Lock()
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(k.opts.limit(), k.opts.burst())}
		k.buckets[key] = b
	}
	b.seen = k.now()
	k.mu.Unlock()
	return b.lim.Allow()
}

// Sweep drops buckets idle for longer than the TTL and returns how many
// remain.
func (k *KeyedLimiter) Sweep() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	cutoff := k.now().Add(-k.ttl)
	for key, b := range k.buckets {
		if b.seen.Before(cutoff) {
			delete(k.buckets, key)
		}
	}
	return len(k.buckets)
}

// Run sweeps every interval until ctx is done.
func (k *KeyedLimiter) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			k.Sweep()
		}
	}
}
