package model

import "fmt"

// Event is one collision event with its lepton and jet collections.
type Event struct {
	Run             uint32
	LuminosityBlock uint32
	Event           uint64

	Electrons []Lepton
	Muons     []Lepton
	Jets      []Jet

	// Triggers holds the HLT paths that fired.
	Triggers map[string]bool

	// GenWeight is the generator weight; zero and ignored for data.
	GenWeight float64
}

// Key identifies an event across datasets.
func (e *Event) Key() string {
	return fmt.Sprintf("%d:%d:%d", e.Run, e.LuminosityBlock, e.Event)
}

// DatasetKind selects simulation or data handling for a whole chunk.
type DatasetKind uint8

const (
	Simulation DatasetKind = iota + 1
	Data
)

func (k DatasetKind) String() string {
	switch k {
	case Simulation:
		return "simulation"
	case Data:
		return "data"
	default:
		return "unknown"
	}
}

// ParseDatasetKind parses "simulation"/"mc" or "data".
func ParseDatasetKind(s string) (DatasetKind, error) {
	switch s {
	case "simulation", "mc":
		return Simulation, nil
	case "data":
		return Data, nil
	default:
		return 0, fmt.Errorf("unknown dataset kind %q", s)
	}
}

// Dataset describes where a chunk comes from.
type Dataset struct {
	Name      string
	Kind      DatasetKind
	ProcessID int
}

// IsMC reports whether the dataset is simulation.
func (d Dataset) IsMC() bool { return d.Kind == Simulation }

// IsData reports whether the dataset is recorded data.
func (d Dataset) IsData() bool { return d.Kind == Data }

// Chunk is the unit of work: a slice of events from one dataset.
type Chunk struct {
	ID      string
	Dataset Dataset
	Events  []Event
}

// Len returns the number of events in the chunk.
func (c *Chunk) Len() int { return len(c.Events) }

// EmptyFloat marks an undefined float quantity.
const EmptyFloat = -99999.0
