// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/h4l/internal/domain/stats"
	"github.com/okian/h4l/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	CutflowProvider
	CategoryProvider
}

// Server wires HTTP routes for the analysis API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	cutflowHandler    *CutflowHandler
	categoriesHandler *CategoriesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		cutflowHandler:    NewCutflowHandler(deps),
		categoriesHandler: NewCategoriesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/cutflow", MetricsMiddleware(s.cutflowHandler.HandleGetCutflow, "cutflow"))
	mux.HandleFunc("/categories", MetricsMiddleware(s.categoriesHandler.HandleGetCategories, "categories"))
}

// statsResponse is the body of GET /stats.
type statsResponse struct {
	Runner   map[string]any  `json:"runner,omitempty"`
	Totals   stats.Totals    `json:"totals"`
	Datasets []stats.Dataset `json:"datasets"`
}

// cutflowResponse is the body of GET /cutflow.
type cutflowResponse struct {
	Dataset string               `json:"dataset"`
	Steps   []types.CutflowEntry `json:"steps"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
