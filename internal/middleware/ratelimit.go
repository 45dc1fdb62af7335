package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiterConfig configures the rate limiter
type RateLimiterConfig struct {
	// RequestsPerSecond is the rate of token refill
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst
	BurstSize int

	// CleanupInterval is how often idle buckets are dropped
	CleanupInterval time.Duration

	// KeyFunc extracts the rate limit key from the request. Default: client IP.
	KeyFunc func(r *http.Request) string
}

// DefaultRateLimiterConfig suits the public storefront reads.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		CleanupInterval:   time.Minute,
	}
}

// LoginRateLimiterConfig slows password guessing on the admin login.
func LoginRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 0.2,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	}
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// RateLimiter is an in-memory token bucket limiter keyed per client.
type RateLimiter struct {
	config  RateLimiterConfig
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine. Call
// Stop to end it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIP
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}

	rl := &RateLimiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow takes a token from key's bucket if one is available.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &tokenBucket{tokens: float64(rl.config.BurstSize), lastRefill: now}
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	burst := float64(rl.config.BurstSize)
	bucket.tokens += now.Sub(bucket.lastRefill).Seconds() * rl.config.RequestsPerSecond
	if bucket.tokens > burst {
		bucket.tokens = burst
	}
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := rl.now()
			rl.mu.Lock()
			for key, bucket := range rl.buckets {
				bucket.mu.Lock()
				idle := now.Sub(bucket.lastRefill) > rl.config.CleanupInterval
				bucket.mu.Unlock()
				if idle {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	retryAfter := "1"
	if rl.config.RequestsPerSecond > 0 && rl.config.RequestsPerSecond < 1 {
		retryAfter = strconv.Itoa(int(1/rl.config.RequestsPerSecond + 0.5))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.config.KeyFunc(r)) {
			w.Header().Set("Retry-After", retryAfter)
			respondTooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
