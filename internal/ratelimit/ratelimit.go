package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/SLASHOO/SkyMotion-Library/internal/auth"
	"github.com/SLASHOO/SkyMotion-Library/internal/geoip"
)

const (
	idleExpiry    = 10 * time.Minute
	sweepInterval = 5 * time.Minute
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter is a token bucket per client. Members are keyed by their member id
// and anonymous callers by client IP. Idle buckets expire after ten minutes.
type Limiter struct {
	mu      sync.Mutex
	buckets *cache.Cache
	rate    float64
	burst   float64
	now     func() time.Time
}

func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		buckets: cache.New(idleExpiry, sweepInterval),
		rate:    requestsPerSecond,
		burst:   float64(burst),
		now:     time.Now,
	}
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	x, found := l.buckets.Get(key)
	if !found {
		l.buckets.SetDefault(key, &bucket{tokens: l.burst - 1, lastSeen: now})
		return true
	}

	b := x.(*bucket)
	elapsed := now.Sub(b.lastSeen).Seconds()
	b.lastSeen = now
	b.tokens = min(b.tokens+elapsed*l.rate, l.burst)
	l.buckets.SetDefault(key, b)

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// ClientKey identifies the caller for rate limiting. Only a member id set by
// the auth middleware counts; routes limited ahead of auth fall back to IP.
func ClientKey(r *http.Request) string {
	if member := auth.MemberIDFromContext(r.Context()); member != "" {
		return "member:" + member
	}
	return "ip:" + geoip.ClientIP(r)
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(ClientKey(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "10")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
