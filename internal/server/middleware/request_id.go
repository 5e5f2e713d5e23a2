package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/probekit/healthd/internal/constants"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID reads the X-Request-ID header from the incoming request. If
// absent, a new UUID is generated. The value is stored on the request context
// and echoed back in the response header so callers can trace their request
// through logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.HeaderXRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set(constants.HeaderXRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom retrieves the request ID stored by the middleware.
// Returns an empty string if the middleware was not applied.
func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
