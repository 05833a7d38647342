package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/h4l/internal/domain/types"
)

// CutflowProvider returns the cumulative cutflow of a dataset.
type CutflowProvider interface {
	Cutflow(dataset string) ([]types.CutflowEntry, bool)
}

// CutflowHandler handles cutflow requests.
type CutflowHandler struct {
	deps CutflowProvider
}

// NewCutflowHandler creates a new cutflow handler.
func NewCutflowHandler(deps CutflowProvider) *CutflowHandler {
	return &CutflowHandler{deps: deps}
}

// HandleGetCutflow handles GET /cutflow?dataset=NAME requests.
func (h *CutflowHandler) HandleGetCutflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("dataset"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing dataset", ErrBadRequest))
		return
	}
	steps, ok := h.deps.Cutflow(name)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("dataset %q: %w", name, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, cutflowResponse{Dataset: name, Steps: steps})
}
