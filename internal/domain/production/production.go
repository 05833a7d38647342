// Package production derives per-event columns from a selected chunk.
package production

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/h4l/internal/domain/categorization"
	"github.com/okian/h4l/internal/domain/corrections"
	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/selection"
	"github.com/okian/h4l/internal/domain/zz"
)

// Columns are the produced columns of one chunk, one entry per event.
type Columns struct {
	M4l    []float32
	Z1Mass []float32
	Z2Mass []float32

	CategoryIDs [][]int
	Seeds       []uint64
	ProcessID   []int

	// NormalizationWeight and Corrections are nil for data.
	NormalizationWeight []float64
	Corrections         *corrections.Columns
}

// Producer computes the derived columns.
type Producer struct {
	strategy  zz.Strategy
	assigner  *categorization.Assigner
	corrector *corrections.Corrector
	norm      *Normalization
}

// Option configures a Producer.
type Option func(*Producer)

// WithStrategy sets the best-candidate strategy.
func WithStrategy(s zz.Strategy) Option { return func(p *Producer) { p.strategy = s } }

// WithAssigner enables category_ids.
func WithAssigner(a *categorization.Assigner) Option { return func(p *Producer) { p.assigner = a } }

// WithCorrector enables the lepton scale factor weights.
func WithCorrector(c *corrections.Corrector) Option { return func(p *Producer) { p.corrector = c } }

// WithNormalization enables normalization weights.
func WithNormalization(n *Normalization) Option { return func(p *Producer) { p.norm = n } }

// New creates a Producer. Without options it produces masses, seeds and
// process ids.
func New(opts ...Option) *Producer {
	p := &Producer{strategy: zz.StrategyFirst}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Produce computes the columns of every event in the chunk.
func (p *Producer) Produce(chunk *model.Chunk, res *selection.Result) (*Columns, error) {
	n := chunk.Len()
	cols := &Columns{
		M4l:       make([]float32, n),
		Z1Mass:    make([]float32, n),
		Z2Mass:    make([]float32, n),
		Seeds:     make([]uint64, n),
		ProcessID: make([]int, n),
	}

	for i := range chunk.Events {
		ev := &chunk.Events[i]
		nLeptons := len(res.Electrons[i]) + len(res.Muons[i])
		cols.M4l[i], cols.Z1Mass[i], cols.Z2Mass[i] = FourLeptonMasses(res.Candidates[i], nLeptons, p.strategy)
		cols.Seeds[i] = Seed(ev)
		cols.ProcessID[i] = chunk.Dataset.ProcessID
	}

	if p.assigner != nil {
		cols.CategoryIDs = p.assigner.Assign(res)
	}

	if !chunk.Dataset.IsMC() {
		return cols, nil
	}

	if p.norm != nil {
		cols.NormalizationWeight = make([]float64, n)
		for i := range chunk.Events {
			w, err := p.norm.Weight(chunk.Dataset.ProcessID, chunk.Events[i].GenWeight)
			if err != nil {
				return nil, fmt.Errorf("dataset %s: %w", chunk.Dataset.Name, err)
			}
			cols.NormalizationWeight[i] = w
		}
	}

	if p.corrector != nil {
		sf, err := p.corrector.Apply(chunk, res)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", chunk.Dataset.Name, err)
		}
		cols.Corrections = sf
	}
	return cols, nil
}

// FourLeptonMasses reduces an event's candidates to (m4l, z1_mass, z2_mass).
// m4l is EmptyFloat with fewer than four leptons; all three are EmptyFloat
// without a candidate.
func FourLeptonMasses(cands []zz.Candidate, nLeptons int, s zz.Strategy) (m4l, z1, z2 float32) {
	best, ok := zz.Best(cands, s)
	if !ok {
		return model.EmptyFloat, model.EmptyFloat, model.EmptyFloat
	}
	m4l = float32(best.ZZ.Mass())
	if nLeptons < 4 {
		m4l = model.EmptyFloat
	}
	return m4l, float32(best.Z1.Mass()), float32(best.Z2.Mass())
}

// Seed returns a deterministic per-event seed from the event identifiers and
// lepton multiplicities.
func Seed(ev *model.Event) uint64 {
	var buf [8 * 5]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(ev.Run))
	binary.LittleEndian.PutUint64(buf[8:], uint64(ev.LuminosityBlock))
	binary.LittleEndian.PutUint64(buf[16:], ev.Event)
	binary.LittleEndian.PutUint64(buf[24:], uint64(len(ev.Electrons)))
	binary.LittleEndian.PutUint64(buf[32:], uint64(len(ev.Muons)))
	return xxhash.Sum64(buf[:])
}
