package corrections

import (
	"fmt"

	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/selection"
)

// Column names of the produced weights.
const (
	ElectronWeight = "electron_weight"
	MuonWeight     = "muon_weight"
	SuffixUp       = "_up"
	SuffixDown     = "_down"
)

// Eligibility is the kinematic domain in which a table may be queried.
type Eligibility struct {
	MinPt     float64 // inclusive
	MaxAbsEta float64 // exclusive; supercluster eta for electrons
}

// DefaultElectronEligibility returns pt >= 10, |eta_SC| < 2.5.
func DefaultElectronEligibility() Eligibility {
	return Eligibility{MinPt: 10, MaxAbsEta: 2.5}
}

// DefaultMuonEligibility returns pt >= 15, |eta| < 2.4.
func DefaultMuonEligibility() Eligibility {
	return Eligibility{MinPt: 15, MaxAbsEta: 2.4}
}

// Mask marks the leptons that are selected and inside the domain.
func (e Eligibility) Mask(leptons []model.Lepton, selected []int) []bool {
	mask := make([]bool, len(leptons))
	for _, i := range selected {
		l := leptons[i]
		mask[i] = l.Pt >= e.MinPt && l.AbsEta() < e.MaxAbsEta
	}
	return mask
}

// Weights is one event weight with its systematic variations.
type Weights struct {
	Nominal float64
	Up      float64
	Down    float64
}

// Unit is the weight of an event without eligible leptons.
var Unit = Weights{Nominal: 1, Up: 1, Down: 1}

// EventWeights multiplies the scale factors of the masked leptons. Unmasked
// leptons are never looked up. A nil table yields Unit.
func EventWeights(t *Table, leptons []model.Lepton, mask []bool) (Weights, error) {
	w := Unit
	if t == nil {
		return w, nil
	}
	for i, l := range leptons {
		if !mask[i] {
			continue
		}
		sf, unc, err := t.Lookup(l.Pt, l.AbsEta())
		if err != nil {
			return Weights{}, err
		}
		w.Nominal *= sf
		w.Up *= sf + unc
		w.Down *= sf - unc
	}
	return w, nil
}

// Columns are the per-event weight columns of one chunk.
type Columns struct {
	Electron []Weights
	Muon     []Weights
}

// Float32 returns the six weight columns keyed by column name.
func (c *Columns) Float32() map[string][]float32 {
	out := make(map[string][]float32, 6)
	for name, ws := range map[string][]Weights{ElectronWeight: c.Electron, MuonWeight: c.Muon} {
		nom := make([]float32, len(ws))
		up := make([]float32, len(ws))
		down := make([]float32, len(ws))
		for i, w := range ws {
			nom[i], up[i], down[i] = float32(w.Nominal), float32(w.Up), float32(w.Down)
		}
		out[name] = nom
		out[name+SuffixUp] = up
		out[name+SuffixDown] = down
	}
	return out
}

// Corrector computes lepton scale factor weights.
type Corrector struct {
	electronTable *Table
	muonTable     *Table
	electronElig  Eligibility
	muonElig      Eligibility
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithElectronTable sets the electron scale factor table.
func WithElectronTable(t *Table) Option { return func(c *Corrector) { c.electronTable = t } }

// WithMuonTable sets the muon scale factor table.
func WithMuonTable(t *Table) Option { return func(c *Corrector) { c.muonTable = t } }

// WithElectronEligibility overrides the electron lookup domain.
func WithElectronEligibility(e Eligibility) Option {
	return func(c *Corrector) { c.electronElig = e }
}

// WithMuonEligibility overrides the muon lookup domain.
func WithMuonEligibility(e Eligibility) Option {
	return func(c *Corrector) { c.muonElig = e }
}

// NewCorrector creates a Corrector with the default eligibility domains.
func NewCorrector(opts ...Option) *Corrector {
	c := &Corrector{
		electronElig: DefaultElectronEligibility(),
		muonElig:     DefaultMuonEligibility(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply computes the weights of every event of a simulated chunk. Data
// chunks get no columns. The first failing lookup fails the chunk.
func (c *Corrector) Apply(chunk *model.Chunk, res *selection.Result) (*Columns, error) {
	if !chunk.Dataset.IsMC() {
		return nil, nil
	}
	cols := &Columns{
		Electron: make([]Weights, chunk.Len()),
		Muon:     make([]Weights, chunk.Len()),
	}
	for i := range chunk.Events {
		ev := &chunk.Events[i]

		w, err := EventWeights(c.electronTable, ev.Electrons, c.electronElig.Mask(ev.Electrons, res.Electrons[i]))
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.Key(), err)
		}
		cols.Electron[i] = w

		w, err = EventWeights(c.muonTable, ev.Muons, c.muonElig.Mask(ev.Muons, res.Muons[i]))
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.Key(), err)
		}
		cols.Muon[i] = w
	}
	return cols, nil
}
