package health

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Handler answers liveness probes with the default Response payload.
//
// The handler is stateless and performs no I/O, no logging and no state
// mutation, so any number of concurrent invocations are safe. GET and HEAD
// produce identical headers; HEAD omits the body.
type Handler struct{}

// NewHandler returns the probe handler.
func NewHandler() *Handler { return &Handler{} }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Response is a fixed struct of primitives; Marshal cannot fail on it.
	body, _ := json.Marshal(NewResponse())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}
