// Package selection implements the four-lepton event selection.
//
// Every step yields a mask: a bitmap of the chunk-local indices of the events
// passing it. The event mask is the intersection of all enabled steps, so an
// event missing from any mask is rejected.
package selection

// Step names in evaluation order.
const (
	StepJSON        = "json"
	StepUniqueEvent = "unique_event"
	StepTrigger     = "trigger"
	StepElectron    = "electron"
	StepMuon        = "muon"
	StepFourLeptons = "four_leptons"
	StepLeptonPt    = "lepton_pt"
	StepZCandidate  = "z_candidate"
	StepZ1Mass      = "z1_mass"
	StepZZMass      = "zz_mass"
)

// StepNames returns all known steps in evaluation order.
func StepNames() []string {
	return []string{
		StepJSON,
		StepUniqueEvent,
		StepTrigger,
		StepElectron,
		StepMuon,
		StepFourLeptons,
		StepLeptonPt,
		StepZCandidate,
		StepZ1Mass,
		StepZZMass,
	}
}

// IsStep reports whether name is a known step.
func IsStep(name string) bool {
	for _, s := range StepNames() {
		if s == name {
			return true
		}
	}
	return false
}

// EventCuts are the event-level thresholds.
type EventCuts struct {
	MinLeptons   int
	LeadingPt    float64
	SubleadingPt float64
	ZMassMin     float64 // exclusive, both Z candidates
	ZMassMax     float64 // exclusive, both Z candidates
	Z1MassMin    float64
	ZZMassMin    float64
}

// DefaultEventCuts returns the HZZ4l event selection thresholds.
func DefaultEventCuts() EventCuts {
	return EventCuts{
		MinLeptons:   4,
		LeadingPt:    20,
		SubleadingPt: 10,
		ZMassMin:     12,
		ZMassMax:     120,
		Z1MassMin:    40,
		ZZMassMin:    70,
	}
}
