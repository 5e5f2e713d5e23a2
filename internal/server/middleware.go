package server

import (
	"net/http"
	"time"

	"github.com/probekit/healthd/internal/constants"
	"github.com/probekit/healthd/internal/server/middleware"
)

// applyMiddleware applies the complete middleware chain to the handler.
// Wrapping order is inside-out: the last applied middleware runs first.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	handler = s.rateLimiter.Middleware(handler)

	if s.config.Security.CORS.Enabled {
		cors := middleware.NewCORSMiddleware(
			s.config.Security.CORS.AllowedOrigins,
			s.config.Security.CORS.AllowedMethods,
			s.config.Security.CORS.AllowedHeaders,
			s.config.Security.CORS.AllowCredentials,
			s.config.Security.CORS.MaxAge,
		)
		handler = cors.Handler(handler)
	}

	if s.config.Security.Headers.Enabled {
		handler = middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
			Enabled:               true,
			HSTSMaxAge:            s.config.Security.Headers.HSTSMaxAge,
			ContentSecurityPolicy: s.config.Security.Headers.ContentSecurityPolicy,
			AllowedHosts:          s.config.Security.Headers.AllowedHosts,
		})(handler)
	}

	handler = middleware.RequestSizeLimit(s.config.Server.MaxRequestSize)(handler)
	handler = s.instrument(handler)
	handler = middleware.RequestLogger(s.logger.Logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}

// instrument records request metrics for every route.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := middleware.WrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		requestSize := r.ContentLength
		if requestSize < 0 {
			requestSize = 0
		}
		s.metrics.RecordRequest(
			r.Method,
			s.endpointLabel(r.URL.Path),
			wrapped.StatusCode(),
			time.Since(start),
			requestSize,
			wrapped.BytesWritten(),
		)
	})
}

// endpointLabel maps the request path to a bounded metric label. Unmatched
// paths collapse into a single value so arbitrary URLs cannot grow the
// label cardinality.
func (s *Server) endpointLabel(path string) string {
	switch path {
	case constants.PathHealth, constants.PathReady, constants.PathStatus, constants.PathOpenAPI, "/":
		return path
	}
	if s.config.Observability.Metrics.Enabled && path == s.config.Observability.Metrics.Path {
		return path
	}
	return "unmatched"
}
