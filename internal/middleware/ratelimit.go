package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/forgo/inkwell/internal/model"
)

// RateLimiter is a token-bucket limiter keyed per caller. Buckets hold
// rate+burst tokens and refill continuously over the window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket

	rate    int
	window  time.Duration
	burst   int
	sweep   time.Duration
	stopCh  chan struct{}
}

type tokenBucket struct {
	tokens   int
	refilled time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Requests per window (default 100)
	Window  time.Duration // Refill window (default 1 minute)
	Burst   int           // Extra headroom above Rate (default 20)
	Cleanup time.Duration // Idle bucket sweep interval (default 5 minutes)
}

// NewRateLimiter creates a limiter and starts its background sweep.
// Call Stop when done.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate == 0 {
		cfg.Rate = 100
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	rl := &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    cfg.Rate,
		window:  cfg.Window,
		burst:   cfg.Burst,
		sweep:   cfg.Cleanup,
		stopCh:  make(chan struct{}),
	}

	go rl.sweepLoop()

	return rl
}

// Stop shuts down the sweep goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropIdleBuckets()
		case <-rl.stopCh:
			return
		}
	}
}

// dropIdleBuckets forgets callers idle for two full windows; they start
// fresh with full burst on their next request
func (rl *RateLimiter) dropIdleBuckets() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-2 * rl.window)
	for key, b := range rl.buckets {
		if b.refilled.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Allow consumes one token for key, reporting the remaining allowance
// and when the bucket next refills completely
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	capacity := rl.rate + rl.burst

	b, ok := rl.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: capacity - 1, refilled: now}
		rl.buckets[key] = b
		return true, b.tokens, now.Add(rl.window)
	}

	elapsed := now.Sub(b.refilled)
	if elapsed >= rl.window {
		b.tokens = capacity
		b.refilled = now
	} else if earned := int(float64(rl.rate) * (float64(elapsed) / float64(rl.window))); earned > 0 {
		b.tokens += earned
		if b.tokens > capacity {
			b.tokens = capacity
		}
		b.refilled = now
	}

	reset = b.refilled.Add(rl.window)
	if b.tokens == 0 {
		return false, 0, reset
	}
	b.tokens--
	return true, b.tokens, reset
}

// RateLimit enforces the limiter per authenticated user, falling back
// to the remote address for anonymous callers. Denials are 429 problem
// responses with Retry-After.
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetUserID(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			allowed, remaining, reset := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(reset).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				model.NewRateLimitError(retryAfter).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
