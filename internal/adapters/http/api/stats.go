package api

import (
	"context"
	"net/http"
)

// StatsProvider reports service state for GET /stats.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]any
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats requests. Stats are recomputed from the
// store on every call.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.provider.GetStats(r.Context()))
}
