package config

import (
	"errors"
	"fmt"
	"time"
)

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	Headers   SecurityHeaders `json:"headers" yaml:"headers"`
	CORS      CORSConfig      `json:"cors" yaml:"cors"`
}

// RateLimitConfig configures the per-client token bucket limiter. Probe
// endpoints are always exempt regardless of these settings.
type RateLimitConfig struct {
	Enabled           bool          `json:"enabled" yaml:"enabled"`
	RequestsPerSecond int           `json:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int           `json:"burst_size" yaml:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
}

// SecurityHeaders configures the hardening headers middleware
type SecurityHeaders struct {
	Enabled               bool     `json:"enabled" yaml:"enabled"`
	ContentSecurityPolicy string   `json:"content_security_policy" yaml:"content_security_policy"`
	HSTSMaxAge            int      `json:"hsts_max_age" yaml:"hsts_max_age"`
	AllowedHosts          []string `json:"allowed_hosts" yaml:"allowed_hosts"`
}

// CORSConfig configures cross-origin resource sharing
type CORSConfig struct {
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers" yaml:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `json:"max_age" yaml:"max_age"`
}

// DefaultSecurityConfig returns the default security configuration
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 100,
			BurstSize:         200,
			CleanupInterval:   5 * time.Minute,
		},
		Headers: SecurityHeaders{
			Enabled:               true,
			ContentSecurityPolicy: "default-src 'self'",
			HSTSMaxAge:            31536000, // 1 year
			AllowedHosts:          []string{},
		},
		CORS: CORSConfig{
			Enabled:          false,
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Accept"},
			AllowCredentials: false,
			MaxAge:           86400, // 24 hours
		},
	}
}

// Validate validates the security configuration
func (c *SecurityConfig) Validate() error {
	var errs []error

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("rate_limit.requests_per_second must be positive"))
		}
		if c.RateLimit.BurstSize <= 0 {
			errs = append(errs, errors.New("rate_limit.burst_size must be positive"))
		}
		if c.RateLimit.CleanupInterval < 0 {
			errs = append(errs, errors.New("rate_limit.cleanup_interval must be non-negative"))
		}
	}

	if c.CORS.Enabled {
		if len(c.CORS.AllowedOrigins) == 0 {
			errs = append(errs, errors.New("cors.allowed_origins must not be empty when CORS is enabled"))
		}
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "" {
				errs = append(errs, errors.New("cors.allowed_origins cannot contain empty strings"))
			}
		}
		if len(c.CORS.AllowedMethods) == 0 {
			errs = append(errs, errors.New("cors.allowed_methods must not be empty when CORS is enabled"))
		}
		if c.CORS.MaxAge < 0 {
			errs = append(errs, errors.New("cors.max_age must be non-negative"))
		}
	}

	if c.Headers.Enabled && c.Headers.HSTSMaxAge < 0 {
		errs = append(errs, fmt.Errorf("headers.hsts_max_age must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
