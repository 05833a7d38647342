package zz

import (
	"fmt"
	"math"
)

// Strategy picks one candidate out of an event's inclusive list.
type Strategy string

const (
	// StrategyFirst takes the first candidate of the concatenated list. It is
	// an ordering artifact, not a figure of merit: 2e2mu candidates always win
	// over 4e and 4mu ones.
	StrategyFirst Strategy = "first"
	// StrategyZ1Closest takes the candidate whose Z1 mass is closest to the
	// nominal Z mass, the earliest one on ties.
	StrategyZ1Closest Strategy = "z1_closest"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFirst, StrategyZ1Closest:
		return Strategy(s), nil
	case "":
		return StrategyFirst, nil
	default:
		return "", fmt.Errorf("unknown best-candidate strategy %q", s)
	}
}

// Best returns the chosen candidate, or false when there is none.
func Best(cands []Candidate, s Strategy) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	if s != StrategyZ1Closest {
		return cands[0], true
	}
	best := 0
	bestDist := math.Abs(cands[0].Z1.Mass() - NominalZMass)
	for i := 1; i < len(cands); i++ {
		if d := math.Abs(cands[i].Z1.Mass() - NominalZMass); d < bestDist {
			best, bestDist = i, d
		}
	}
	return cands[best], true
}
