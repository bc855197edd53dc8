package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/config"
)

// clientTTL is how long an idle client's limiter is kept.
const clientTTL = 10 * time.Minute

// RateLimitConfig sets the token bucket refill rate and size.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 100, Burst: 200}
}

func RateLimitFromConfig(cfg config.RateLimitConfig) RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: cfg.RequestsPerSecond, Burst: cfg.Burst}
}

// buckets holds one limiter per key and forgets keys idle for clientTTL.
type buckets struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	byKey     map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	return &buckets{cfg: cfg, byKey: make(map[string]*bucket), lastSweep: time.Now()}
}

func (b *buckets) get(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) > clientTTL {
		for k, bk := range b.byKey {
			if now.Sub(bk.lastSeen) > clientTTL {
				delete(b.byKey, k)
			}
		}
		b.lastSweep = now
	}
	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(rate.Limit(b.cfg.RequestsPerSecond), b.cfg.Burst)}
		b.byKey[key] = bk
	}
	bk.lastSeen = now
	return bk.limiter
}

// limit rejects a request with 429 and a Retry-After header when the
// key's bucket is empty. Rejected requests do not consume a token.
func limit(b *buckets, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		res := b.get(key(c), now).ReserveN(now, 1)
		if !res.OK() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RateLimit applies a separate bucket to each client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return limit(newBuckets(cfg), func(c *gin.Context) string { return c.ClientIP() })
}

// GlobalRateLimit shares one bucket across all clients.
func GlobalRateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return limit(newBuckets(cfg), func(*gin.Context) string { return "" })
}
