package api

import (
	"net/http"

	"github.com/okian/h4l/internal/domain/stats"
)

// StatsProvider exposes the accumulated statistics.
type StatsProvider interface {
	Stats() []stats.Dataset
	Totals() stats.Totals
	Info() map[string]any
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	datasets := h.statsProvider.Stats()
	if datasets == nil {
		datasets = []stats.Dataset{}
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Runner:   h.statsProvider.Info(),
		Totals:   h.statsProvider.Totals(),
		Datasets: datasets,
	})
}
