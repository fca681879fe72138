package api

import (
	"net/http"

	"github.com/okian/attrition/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests by serving the Prometheus
// exposition of the service registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// ReadinessProbe reports whether the service can answer predictions.
type ReadinessProbe interface {
	Ready() bool
}

// ReadyHandler handles readiness requests.
type ReadyHandler struct {
	probe ReadinessProbe
}

// NewReadyHandler creates a new readiness handler.
func NewReadyHandler(probe ReadinessProbe) *ReadyHandler {
	return &ReadyHandler{probe: probe}
}

type readyResponse struct {
	Status string `json:"status"`
}

// HandleReady handles GET /readyz: 200 once models are loaded, 503 before.
func (h *ReadyHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "api.ready", http.MethodGet)
		return
	}
	if !h.probe.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "models_not_loaded"})
		return
	}
	writeJSON(w, http.StatusOK, readyResponse{Status: "ready"})
}
