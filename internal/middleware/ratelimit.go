package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	redispkg "github.com/wayfarer-labs/planner/internal/pkg/redis"
)

const (
	rateLimitMax    = 50
	rateLimitWindow = time.Second
	visitorIdleTTL  = 10 * time.Minute
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window counter shared by every instance behind the same Redis.
type RedisLimiter struct {
	client *redispkg.Client
	max    int64
	window time.Duration
}

func NewRedisLimiter(client *redispkg.Client, max int, window time.Duration) *RedisLimiter {
	if max <= 0 {
		max = rateLimitMax
	}
	if window <= 0 {
		window = rateLimitWindow
	}
	return &RedisLimiter{client: client, max: int64(max), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	count, err := l.client.IncrWindow(ctx, fmt.Sprintf("planner:rate_limit:%s:%d", key, bucket), l.window+time.Second)
	if err != nil {
		return true, err
	}
	return count <= l.max, nil
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is a per-key token bucket kept in process memory, used when Redis is disabled.
type LocalLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func NewLocalLimiter(max int, window time.Duration) *LocalLimiter {
	if max <= 0 {
		max = rateLimitMax
	}
	if window <= 0 {
		window = rateLimitWindow
	}
	return &LocalLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(max) / window.Seconds()),
		burst:    max,
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.sweep(now)
	return v.limiter.AllowN(now, 1), nil
}

// sweep drops visitors idle for longer than visitorIdleTTL. Caller holds mu.
func (l *LocalLimiter) sweep(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(l.visitors, key)
		}
	}
}

// RateLimit throttles anonymous callers per client IP.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ok, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			_ = c.Error(err)
		}
		if !ok {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
				"code":  apperr.Kind("rate_limited"),
			})
			return
		}

		c.Next()
	}
}
