package constants

import "time"

// Environment variable constants
const (
	EnvHost              = "HEALTHD_HOST"
	EnvPort              = "HEALTHD_PORT"
	EnvMetricsPort       = "HEALTHD_METRICS_PORT"
	EnvReadTimeout       = "HEALTHD_READ_TIMEOUT"
	EnvWriteTimeout      = "HEALTHD_WRITE_TIMEOUT"
	EnvIdleTimeout       = "HEALTHD_IDLE_TIMEOUT"
	EnvMaxRequestSize    = "HEALTHD_MAX_REQUEST_SIZE"
	EnvShutdownTimeout   = "HEALTHD_SHUTDOWN_TIMEOUT"
	EnvLogLevel          = "HEALTHD_LOG_LEVEL"
	EnvLogFormat         = "HEALTHD_LOG_FORMAT"
	EnvRateLimitEnabled  = "HEALTHD_RATE_LIMIT_ENABLED"
	EnvRateLimitRPS      = "HEALTHD_RATE_LIMIT_RPS"
	EnvHotReload         = "HEALTHD_HOT_RELOAD"
	EnvHotReloadDebounce = "HEALTHD_HOT_RELOAD_DEBOUNCE"
	EnvTLSEnabled        = "HEALTHD_TLS_ENABLED"
	EnvTLSCertFile       = "HEALTHD_TLS_CERT_FILE"
	EnvTLSKeyFile        = "HEALTHD_TLS_KEY_FILE"
)

// HTTP header constants
const (
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderAllow         = "Allow"
	HeaderOrigin        = "Origin"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXRequestID    = "X-Request-ID"
	HeaderRetryAfter    = "Retry-After"
)

// Content type constants
const (
	ContentTypeJSON = "application/json"
)

// CORS headers
const (
	HeaderAccessControlAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderAccessControlAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAccessControlMaxAge           = "Access-Control-Max-Age"
)

// Rate limiting headers
const (
	HeaderXRateLimitLimit     = "X-RateLimit-Limit"
	HeaderXRateLimitRemaining = "X-RateLimit-Remaining"
)

// Probe and operational paths. Probe paths are exempt from rate limiting so
// orchestrator probe storms can never be throttled.
const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathStatus  = "/status"
	PathMetrics = "/metrics"
	PathOpenAPI = "/openapi.json"
)

// Rate limiter internal constants
const (
	// RateLimitCleanupInterval is the idle time after which a client's
	// limiter is evicted from the cache
	RateLimitCleanupInterval = 5 * time.Minute
)

// Error code constants
const (
	ErrorCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)
