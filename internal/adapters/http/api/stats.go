package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// readiness is the subset of Dependencies /stats reports on.
type readiness interface {
	Ready() bool
}

// StatsHandler serves the provider's counters plus readiness and handler uptime.
type StatsHandler struct {
	provider StatsProvider
	ready    readiness
	since    time.Time
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider, ready readiness) *StatsHandler {
	return &StatsHandler{provider: provider, ready: ready, since: time.Now()}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.stats", http.MethodGet)
		return
	}

	// Copy so the provider's map is never mutated by the handler.
	out := make(map[string]interface{})
	if h.provider != nil {
		maps.Copy(out, h.provider.GetStats())
	}
	out["ready"] = h.ready != nil && h.ready.Ready()
	out["uptime_seconds"] = int64(time.Since(h.since).Seconds())
	writeJSON(w, http.StatusOK, out)
}
