package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type localWindow struct {
	count       int
	windowStart time.Time
}

// LocalLimiter is an in-process fixed-window limiter, used when no redis
// backend is configured
type LocalLimiter struct {
	mu      sync.Mutex
	windows map[string]*localWindow
	limit   int
	window  time.Duration
}

// NewLocalLimiter creates an in-process fixed-window limiter
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		windows: make(map[string]*localWindow),
		limit:   limit,
		window:  window,
	}
}

// Allow counts the request against the key's current window
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.Sub(w.windowStart) >= l.window {
		l.windows[key] = &localWindow{count: 1, windowStart: now}
		l.evictStale(now)
		return true, nil
	}

	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// evictStale drops expired windows, called with the mutex held
func (l *LocalLimiter) evictStale(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.windowStart) >= l.window {
			delete(l.windows, key)
		}
	}
}

// RedisLimiter is a fixed-window limiter shared across instances
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a redis-backed fixed-window limiter
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow increments the key's window counter in redis
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(l.limit), nil
}

// RateLimit creates a middleware limiting requests per client IP. Limiter
// errors fail open: a broken limiter must not block donors.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Error().Err(err).Msg("Rate limiter error, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				respondError(w, "Too many submissions, please try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the request IP, normalized by chi's RealIP middleware
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
