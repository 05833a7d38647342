package production

import (
	"errors"
	"fmt"

	"github.com/okian/h4l/internal/domain/model"
)

// ErrMissingNormalization is returned when a process has no cross section
// or no generator weight sum.
var ErrMissingNormalization = errors.New("missing normalization input")

// Normalization scales simulated events to the recorded luminosity.
type Normalization struct {
	// Luminosity in inverse picobarn.
	Luminosity float64
	// CrossSections in picobarn, keyed by process id.
	CrossSections map[int]float64
	// SumWeights holds the generator weight sum of each process over all
	// its events, before any selection.
	SumWeights map[int]float64
}

// Weight returns mc_weight * luminosity * sigma / sum of weights.
func (n *Normalization) Weight(processID int, mcWeight float64) (float64, error) {
	xs, ok := n.CrossSections[processID]
	if !ok {
		return 0, fmt.Errorf("%w: no cross section for process %d", ErrMissingNormalization, processID)
	}
	sum := n.SumWeights[processID]
	if sum == 0 {
		return 0, fmt.Errorf("%w: zero weight sum for process %d", ErrMissingNormalization, processID)
	}
	return mcWeight * n.Luminosity * xs / sum, nil
}

// SumGenWeights adds up the generator weights of simulated chunks per process.
func SumGenWeights(chunks ...*model.Chunk) map[int]float64 {
	out := make(map[int]float64)
	for _, c := range chunks {
		if !c.Dataset.IsMC() {
			continue
		}
		for i := range c.Events {
			out[c.Dataset.ProcessID] += c.Events[i].GenWeight
		}
	}
	return out
}
