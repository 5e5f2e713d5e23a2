package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SecurityHeadersConfig defines configuration for security headers
type SecurityHeadersConfig struct {
	Enabled               bool
	HSTSMaxAge            int
	ContentSecurityPolicy string
	AllowedHosts          []string
}

// SecurityHeaders creates a security headers middleware
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", config.HSTSMaxAge))

			if config.ContentSecurityPolicy != "" {
				w.Header().Set("Content-Security-Policy", config.ContentSecurityPolicy)
			}

			if len(config.AllowedHosts) > 0 {
				allowed := false
				for _, host := range config.AllowedHosts {
					if r.Host == host {
						allowed = true
						break
					}
				}
				if !allowed {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":   "FORBIDDEN",
						"message": "Host not allowed",
					})
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
