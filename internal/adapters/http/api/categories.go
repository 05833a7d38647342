package api

import (
	"net/http"

	"github.com/okian/h4l/internal/domain/types"
)

// CategoryProvider lists the registered categories.
type CategoryProvider interface {
	Categories() []types.CategoryRow
}

// CategoriesHandler handles category requests.
type CategoriesHandler struct {
	deps CategoryProvider
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps CategoryProvider) *CategoriesHandler {
	return &CategoriesHandler{deps: deps}
}

// HandleGetCategories handles GET /categories requests. ?leaf=true keeps
// only the categories that are assigned to events.
func (h *CategoriesHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rows := h.deps.Categories()
	if r.URL.Query().Get("leaf") == "true" {
		var leaves []types.CategoryRow
		for _, row := range rows {
			if row.Leaf {
				leaves = append(leaves, row)
			}
		}
		rows = leaves
	}
	if rows == nil {
		rows = []types.CategoryRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}
