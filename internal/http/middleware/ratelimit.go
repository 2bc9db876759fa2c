package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/pkg/logging"
	"github.com/redis/go-redis/v9"
)

const rateLimitMessage = "Too many requests. Please try again later."

// RateLimiter counts requests per client in fixed Redis-backed windows so
// every instance behind the load balancer shares one budget.
type RateLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	prefix string
	logger *logging.Logger
	now    func() time.Time
}

// NewRateLimiter allows limit requests per window for each key.
func NewRateLimiter(client redis.Cmdable, limit int, window time.Duration, logger *logging.Logger) *RateLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "ratelimit:intake",
		logger: logger,
		now:    time.Now,
	}
}

// Allow records one request for key. On Redis errors the request is allowed
// and the error returned for logging.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := rl.now()
	windowStart := now.Truncate(rl.window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.prefix, key, windowStart.Unix())

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, 0, fmt.Errorf("ratelimit: incr: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return true, 0, fmt.Errorf("ratelimit: expire: %w", err)
		}
	}
	if count > rl.limit {
		return false, windowStart.Add(rl.window).Sub(now), nil
	}
	return true, 0, nil
}

// Middleware rejects requests over the limit with 429. Preflight requests are
// never counted.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		ip := leads.ClientIP(r)
		allowed, retryAfter, err := rl.Allow(r.Context(), ip)
		if err != nil {
			rl.logger.Warn("rate limiter unavailable, allowing request", "error", err, "ip", ip)
		}
		if !allowed {
			seconds := int(retryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": rateLimitMessage})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit returns an HTTP middleware allowing perMinute requests per client
// address. A nil client or non-positive limit disables limiting.
func RateLimit(client redis.Cmdable, perMinute int, logger *logging.Logger) func(http.Handler) http.Handler {
	if client == nil || perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return NewRateLimiter(client, perMinute, time.Minute, logger).Middleware
}
