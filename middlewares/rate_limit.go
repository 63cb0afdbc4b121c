package middlewares

import (
	"math"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/sitekit/internal"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	Key   func(c internal.Context) string
	Now   func() time.Time
	Rate  rate.Limit
	Burst int
	// Idle is how long an unused client bucket is kept.
	Idle time.Duration
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitKey sets how clients are told apart. Defaults to ClientIP.
func WithRateLimitKey(key func(c internal.Context) string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if key != nil {
			cfg.Key = key
		}
	}
}

// WithRateLimitClock sets the clock, for tests.
func WithRateLimitClock(now func() time.Time) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if now != nil {
			cfg.Now = now
		}
	}
}

// RateLimit gives each client a token bucket of size burst refilled at
// limit, and answers 429 with Retry-After once it is empty.
//
// Example:
//
//	// 5 contact messages per client per minute
//	r.POST("/contact", h.contact, middlewares.RateLimit(rate.Every(12*time.Second), 5))
func RateLimit(limit rate.Limit, burst int, opts ...RateLimitOption) internal.Middleware {
	cfg := &RateLimitConfig{
		Key:   ClientIP,
		Now:   time.Now,
		Rate:  limit,
		Burst: burst,
		Idle:  10 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}

	l := &limiters{cfg: cfg, clients: make(map[string]*client)}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			now := cfg.Now()
			res := l.reserve(cfg.Key(c), now)
			if delay := res.DelayFrom(now); delay > 0 {
				res.CancelAt(now)
				c.SetHeader("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				return internal.ErrTooManyRequests("Too many requests, please try again later",
					internal.WithError(ErrRateLimited),
					internal.WithErrorCode("rate_limited"),
				)
			}
			return next(c)
		}
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiters struct {
	cfg       *RateLimitConfig
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func (l *limiters) reserve(key string, now time.Time) *rate.Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.cfg.Idle {
		for k, cl := range l.clients {
			if now.Sub(cl.lastSeen) > l.cfg.Idle {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(l.cfg.Rate, l.cfg.Burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.ReserveN(now, 1)
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote address.
func ClientIP(c internal.Context) string {
	if fwd := c.Header("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.Header("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
	if err != nil {
		return c.Request().RemoteAddr
	}
	return host
}
