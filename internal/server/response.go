package server

import (
	"encoding/json"
	"net/http"

	"github.com/probekit/healthd/internal/constants"
)

// respondJSON sends v as a JSON response with the given status code
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
