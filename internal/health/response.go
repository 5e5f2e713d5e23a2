// Package health implements the probe contract: the payload models and the
// handler for the liveness endpoint.
package health

import "time"

// StatusOK is the default value of the Status field.
const StatusOK = "ok"

// Response is the fixed payload served by the liveness endpoint. It carries
// no identity and no mutable state; a fresh value is built per request.
type Response struct {
	Status string `json:"status"`
}

// NewResponse returns a Response with its default field values.
// Construction never fails.
func NewResponse() Response {
	return Response{Status: StatusOK}
}

// Report is the richer diagnostic payload served by the status endpoint.
// Unlike Response it is not part of the fixed probe contract and may grow
// fields over time.
type Report struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Uptime    string          `json:"uptime"`
	Checks    map[string]bool `json:"checks"`
}
