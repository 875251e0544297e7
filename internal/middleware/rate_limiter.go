package middleware

import (
	"strings"
	"sync"
	"time"

	"pocket-budget/internal/errors"
	"pocket-budget/internal/handlers"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerSecond = 10
	defaultBurstSize         = 20

	visitorIdleTimeout = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

// NewIPRateLimiter returns a limiter allowing rps requests per second with
// the given burst. Non-positive values fall back to 10 rps and a burst of 20.
func NewIPRateLimiter(rps, burst int) *IPRateLimiter {
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = defaultBurstSize
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow spends one token from the bucket of ip.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Cleanup forgets visitors idle for longer than the idle timeout and returns
// how many were removed.
func (l *IPRateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-visitorIdleTimeout)
	removed := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until stop is closed.
func (l *IPRateLimiter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-stop:
			return
		}
	}
}

// Middleware rejects requests over the limit with SYSTEM_006.
func (l *IPRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(clientIP(c)) {
				return handlers.SendError(c, errors.SystemRateLimitExceeded)
			}
			return next(c)
		}
	}
}

func clientIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := c.Request().Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.RealIP()
}
