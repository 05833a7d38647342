// Package corrections applies lepton scale factors to simulated events.
package corrections

import (
	"fmt"
	"sort"
)

// Table is a scale factor map binned in pt and |eta|. Bins are half open,
// [low, high).
type Table struct {
	Name     string
	PtEdges  []float64
	EtaEdges []float64
	// Values and Errors are indexed [pt bin][eta bin].
	Values [][]float64
	Errors [][]float64
}

// NewTable validates the binning and returns the table.
func NewTable(name string, ptEdges, etaEdges []float64, values, errs [][]float64) (*Table, error) {
	t := &Table{Name: name, PtEdges: ptEdges, EtaEdges: etaEdges, Values: values, Errors: errs}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks edge ordering and matrix shapes.
func (t *Table) Validate() error {
	if len(t.PtEdges) < 2 || len(t.EtaEdges) < 2 {
		return fmt.Errorf("%w %q: need at least one bin per axis", ErrInvalidTable, t.Name)
	}
	for _, edges := range [][]float64{t.PtEdges, t.EtaEdges} {
		if !sort.Float64sAreSorted(edges) {
			return fmt.Errorf("%w %q: edges not ascending", ErrInvalidTable, t.Name)
		}
	}
	nPt, nEta := len(t.PtEdges)-1, len(t.EtaEdges)-1
	if len(t.Values) != nPt || len(t.Errors) != nPt {
		return fmt.Errorf("%w %q: want %d pt rows", ErrInvalidTable, t.Name, nPt)
	}
	for i := 0; i < nPt; i++ {
		if len(t.Values[i]) != nEta || len(t.Errors[i]) != nEta {
			return fmt.Errorf("%w %q: pt row %d: want %d eta columns", ErrInvalidTable, t.Name, i, nEta)
		}
	}
	return nil
}

// Lookup returns the scale factor and its uncertainty.
func (t *Table) Lookup(pt, absEta float64) (sf, unc float64, err error) {
	i := bin(t.PtEdges, pt)
	j := bin(t.EtaEdges, absEta)
	if i < 0 || j < 0 {
		return 0, 0, fmt.Errorf("%w: %s at pt=%g |eta|=%g", ErrOutOfRange, t.Name, pt, absEta)
	}
	return t.Values[i][j], t.Errors[i][j], nil
}

// bin returns the index of the bin holding x, or -1 outside the edges.
func bin(edges []float64, x float64) int {
	if x < edges[0] || x >= edges[len(edges)-1] {
		return -1
	}
	return sort.Search(len(edges), func(k int) bool { return edges[k] > x }) - 1
}
