package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
)

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	// Requests per minute per client
	RequestsPerMinute int
	// Burst size multiplier (burst = rate * multiplier)
	BurstMultiplier int
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		BurstMultiplier:   2,
	}
}

// RateLimiter limits requests per client IP using a fortify token bucket
type RateLimiter struct {
	limiter ratelimit.RateLimiter
}

// NewRateLimiter creates a limiter from config, filling in defaults
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.BurstMultiplier <= 0 {
		cfg.BurstMultiplier = def.BurstMultiplier
	}
	return &RateLimiter{
		limiter: ratelimit.New(&ratelimit.Config{
			Rate:     cfg.RequestsPerMinute,
			Burst:    cfg.RequestsPerMinute * cfg.BurstMultiplier,
			Interval: time.Minute,
		}),
	}
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)

		if !rl.limiter.Allow(r.Context(), key) {
			slog.Warn("rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
				"request_id", GetRequestID(r.Context()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(60))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"too many requests, please try again later"}}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Close releases the limiter's background resources
func (rl *RateLimiter) Close() error {
	return rl.limiter.Close()
}

// clientIP extracts the client IP address from the request
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
