package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter tracks hits per key in fixed windows. redisclient.Client satisfies it
// for limits shared across instances.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetIn time.Duration, err error)
}

// MemoryCounter keeps windows in process.
type MemoryCounter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{clients: make(map[string]*clientBucket)}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.clients[key]
	if !ok || now.After(b.windowEnd) {
		// drop expired buckets while we hold the lock
		for k, old := range m.clients {
			if now.After(old.windowEnd) {
				delete(m.clients, k)
			}
		}

		b = &clientBucket{windowEnd: now.Add(window)}
		m.clients[key] = b
	}

	b.count++
	return b.count, b.windowEnd.Sub(now), nil
}

type RateLimiter struct {
	counter Counter
	window  time.Duration
	limit   int
	log     *slog.Logger
}

func NewRateLimiter(counter Counter, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   limit,
		window:  window,
		log:     log,
	}
}

// RateLimiterMiddleware enforces the limit for a derived key. A zero limit
// disables it, and counter failures let the request through.
func (rl *RateLimiter) RateLimiterMiddleware(scope string, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, resetIn, err := rl.counter.Hit(c.Request.Context(), scope+":"+key, rl.window)
		if err != nil {
			rl.log.WarnContext(c.Request.Context(), "rate limit counter unavailable", "scope", scope, "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			retryAfter := int(resetIn.Seconds())

			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abort(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
