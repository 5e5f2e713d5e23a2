// Package security provides the request throttling middleware.
package security

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/probekit/healthd/internal/config"
	"github.com/probekit/healthd/internal/constants"
)

// RateLimiter throttles requests per client IP with a token bucket. One
// rate.Limiter is kept per client in an expiring cache so idle clients are
// evicted automatically.
//
// Probe paths are always exempt: orchestrators and load balancers probe from
// few source addresses at high aggregate rates, and throttling them would
// turn a healthy process into a flapping one.
type RateLimiter struct {
	limiters *cache.Cache
	config   *config.RateLimitConfig
}

func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = constants.RateLimitCleanupInterval
	}

	return &RateLimiter{
		limiters: cache.New(cleanup, 2*cleanup),
		config:   cfg,
	}
}

// Allow reports whether the client identified by id may proceed.
func (rl *RateLimiter) Allow(id string) bool {
	if !rl.config.Enabled {
		return true
	}
	return rl.limiterFor(id).Allow()
}

func (rl *RateLimiter) limiterFor(id string) *rate.Limiter {
	if item, found := rl.limiters.Get(id); found {
		return item.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize)
	rl.limiters.Set(id, limiter, cache.DefaultExpiration)
	return limiter
}

// Middleware enforces the rate limit on every non-probe route.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled || rl.shouldSkip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		id := "ip:" + rl.clientIP(r)
		limiter := rl.limiterFor(id)

		if !limiter.Allow() {
			w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
			w.Header().Set(constants.HeaderXRateLimitLimit, strconv.Itoa(rl.config.BurstSize))
			w.Header().Set(constants.HeaderXRateLimitRemaining, strconv.Itoa(int(limiter.Tokens())))
			w.Header().Set(constants.HeaderRetryAfter, "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   constants.ErrorCodeRateLimitExceeded,
				"message": "Rate limit exceeded",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get(constants.HeaderXForwardedFor); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get(constants.HeaderXRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) shouldSkip(path string) bool {
	switch path {
	case constants.PathHealth, constants.PathReady, constants.PathMetrics:
		return true
	}
	return false
}
