package middleware

import (
	"sync"
	"time"

	"expensetrack/internal/errors"
	"expensetrack/internal/handlers"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// defaultRequestsPerSecond keeps a runaway client from hammering the store
	defaultRequestsPerSecond = 5
	defaultBurstSize         = 10

	visitorMaxIdle = 3 * time.Minute
	sweepInterval  = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipThrottle hands out one token bucket per client IP and evicts buckets
// that have been idle past visitorMaxIdle.
type ipThrottle struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
}

func newIPThrottle(rps, burst int) *ipThrottle {
	t := &ipThrottle{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
	go t.janitor()
	return t
}

func (t *ipThrottle) allow(ip string) bool {
	t.mu.Lock()
	v, ok := t.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	limiter := v.limiter
	t.mu.Unlock()

	return limiter.Allow()
}

func (t *ipThrottle) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ip, v := range t.visitors {
		if now.Sub(v.lastSeen) > visitorMaxIdle {
			delete(t.visitors, ip)
		}
	}
}

func (t *ipThrottle) janitor() {
	for {
		time.Sleep(sweepInterval)
		t.sweep(time.Now())
	}
}

// RateLimiter throttles requests per client IP with the default budget.
func RateLimiter() echo.MiddlewareFunc {
	return RateLimiterWithConfig(defaultRequestsPerSecond, defaultBurstSize)
}

// RateLimiterWithConfig throttles requests per client IP at the given rate
// and burst. Requests over budget get the SYSTEM_004 error envelope.
func RateLimiterWithConfig(rps int, burst int) echo.MiddlewareFunc {
	throttle := newIPThrottle(rps, burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !throttle.allow(clientIP(c)) {
				return handlers.SendError(c, errors.SystemRateLimitExceeded)
			}
			return next(c)
		}
	}
}

// clientIP resolves the caller's address, preferring proxy headers over the
// socket peer.
func clientIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Request().Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.RealIP()
}
