package worker

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per backend. Keys are provider names
// or, for self-hosted backends, a base URL that is reduced to its host.
type Limiter struct {
	buckets sync.Map // normalized key -> *rate.Limiter

	limit rate.Limit
	burst int
}

// NewLimiter creates a limiter whose buckets allow rps calls per second.
// A non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{limit: toLimit(rps), burst: burst}
}

// Wait blocks until a call for key is allowed or ctx is done
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucket(key).Wait(ctx)
}

// Allow takes a token for key if one is available
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

// SetRate overrides the rate for one key. Non-positive values fall back to
// unlimited (rps) and the default burst.
func (l *Limiter) SetRate(key string, rps float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	b := l.bucket(key)
	b.SetLimit(toLimit(rps))
	b.SetBurst(burst)
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	k := normalizeKey(key)
	if b, ok := l.buckets.Load(k); ok {
		return b.(*rate.Limiter)
	}
	b, _ := l.buckets.LoadOrStore(k, rate.NewLimiter(l.limit, l.burst))
	return b.(*rate.Limiter)
}

func toLimit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

// normalizeKey lower-cases provider names and reduces URLs to their host,
// so two base URLs on the same server share a bucket
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if !strings.Contains(key, "://") {
		return key
	}
	if u, err := url.Parse(key); err == nil && u.Host != "" {
		return u.Host
	}
	return key
}
