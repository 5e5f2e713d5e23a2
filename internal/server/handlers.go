package server

import (
	"net/http"
	"time"

	"github.com/probekit/healthd/internal/constants"
	"github.com/probekit/healthd/internal/health"
)

// readinessHandler reports whether the process should receive traffic.
// It flips to 503 once shutdown begins so load balancers drain us first.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if s.draining.Load() {
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusHandler serves the diagnostic report. Unlike the probe handler it is
// traced and may grow checks over time.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.StartSpan(r.Context(), "status_report")
	defer span.End()

	report := health.Report{
		Status:    health.StatusOK,
		Timestamp: time.Now().UTC(),
		Version:   s.apiDoc.Version(),
		Uptime:    time.Since(s.startTime).String(),
		Checks: map[string]bool{
			"api_doc": s.apiDoc != nil,
			"metrics": s.config.Observability.Metrics.Enabled,
			"serving": !s.draining.Load(),
		},
	}

	s.respondJSON(w, http.StatusOK, report)
}

// indexHandler serves a JSON index of the service's endpoints at the exact
// root path.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	doc := struct {
		Service   string            `json:"service"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}{
		Service: "healthd",
		Version: s.apiDoc.Version(),
		Endpoints: map[string]string{
			"health":  constants.PathHealth,
			"ready":   constants.PathReady,
			"status":  constants.PathStatus,
			"openapi": constants.PathOpenAPI,
		},
	}
	if s.config.Observability.Metrics.Enabled {
		doc.Endpoints["metrics"] = s.config.Observability.Metrics.Path
	}

	s.respondJSON(w, http.StatusOK, doc)
}
