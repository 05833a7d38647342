// Package categorization assigns analysis category ids to events.
package categorization

import (
	"errors"
	"fmt"

	"github.com/okian/h4l/internal/domain/analysis"
	"github.com/okian/h4l/internal/domain/selection"
)

// ErrUnknownCategorizer is returned when a category selects on a name that
// has no categorizer.
var ErrUnknownCategorizer = errors.New("unknown categorizer")

// Counts are the selected lepton multiplicities of one event.
type Counts struct {
	Electrons int
	Muons     int
}

// Categorizer accepts or rejects one event.
type Categorizer func(Counts) bool

func fourE(c Counts) bool     { return c.Electrons == 4 && c.Muons == 0 }
func fourMu(c Counts) bool    { return c.Electrons == 0 && c.Muons == 4 }
func twoETwoMu(c Counts) bool { return c.Electrons == 2 && c.Muons == 2 }

// Builtin returns the categorizers referenced by the default categories.
func Builtin() map[string]Categorizer {
	return map[string]Categorizer{
		analysis.CatIDIncl:  func(c Counts) bool { return fourE(c) || fourMu(c) || twoETwoMu(c) },
		analysis.CatIDFourE: fourE,
		analysis.CatIDFourM: fourMu,
		analysis.CatID2E2M:  twoETwoMu,
	}
}

type leaf struct {
	id   int
	name string
	sel  []Categorizer
}

// Assigner evaluates the leaf categories of a configuration.
type Assigner struct {
	leaves []leaf
	names  map[int]string
}

// NewAssigner resolves the selections of every leaf category of cfg against
// the given categorizers.
func NewAssigner(cfg *analysis.Config, categorizers map[string]Categorizer) (*Assigner, error) {
	a := &Assigner{names: make(map[int]string)}
	for _, cat := range cfg.LeafCategories() {
		l := leaf{id: cat.ID, name: cat.Name}
		for _, name := range cat.Selection {
			fn, ok := categorizers[name]
			if !ok {
				return nil, fmt.Errorf("%w %q in category %q", ErrUnknownCategorizer, name, cat.Name)
			}
			l.sel = append(l.sel, fn)
		}
		a.leaves = append(a.leaves, l)
		a.names[cat.ID] = cat.Name
	}
	return a, nil
}

// IDs returns the ids of all leaf categories accepting the event, in
// registration order.
func (a *Assigner) IDs(c Counts) []int {
	var ids []int
	for _, l := range a.leaves {
		if accepts(l.sel, c) {
			ids = append(ids, l.id)
		}
	}
	return ids
}

func accepts(sel []Categorizer, c Counts) bool {
	for _, fn := range sel {
		if !fn(c) {
			return false
		}
	}
	return true
}

// Name returns the category name of an id.
func (a *Assigner) Name(id int) string {
	return a.names[id]
}

// Assign returns the category ids of every event of a selected chunk.
func (a *Assigner) Assign(res *selection.Result) [][]int {
	out := make([][]int, res.N)
	for i := 0; i < res.N; i++ {
		out[i] = a.IDs(Counts{Electrons: len(res.Electrons[i]), Muons: len(res.Muons[i])})
	}
	return out
}
