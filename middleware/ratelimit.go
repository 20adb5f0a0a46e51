// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// VoterRateLimiter keeps one token bucket per caller, keyed by voter id
// or, without one, by client IP.
type VoterRateLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

func NewVoterRateLimiter(perSecond float64, burst int) *VoterRateLimiter {
	return &VoterRateLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		entries:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
	}
}

// Allow reports whether key may make a request now.
func (l *VoterRateLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Wrap rejects callers over their budget with 429.
func (l *VoterRateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderVoterID)
		if key == "" {
			key = "ip:" + GetClientIP(r)
		}
		if !l.Allow(key) {
			w.Header().Set("Retry-After", "1")
			ErrorResponse(w, http.StatusTooManyRequests, "too many vote attempts, slow down")
			return
		}
		next(w, r)
	}
}

// WithVoterRateLimit wraps next with a fresh per-voter limiter.
func WithVoterRateLimit(perSecond float64, burst int, next http.HandlerFunc) http.HandlerFunc {
	return NewVoterRateLimiter(perSecond, burst).Wrap(next)
}
