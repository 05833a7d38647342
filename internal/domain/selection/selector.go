package selection

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/okian/h4l/internal/domain/dedupe"
	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/zz"
)

// Step is one named mask.
type Step struct {
	Name string
	Mask *roaring.Bitmap
}

// Result is the outcome of selecting one chunk.
type Result struct {
	N int

	// Steps holds the enabled steps in evaluation order.
	Steps []Step
	// Event is the intersection of all step masks.
	Event *roaring.Bitmap

	// Electrons and Muons hold per event the indices of the selected
	// leptons, ordered by pt descending.
	Electrons [][]int
	Muons     [][]int

	// Candidates holds per event the inclusive ZZ candidates built from the
	// selected leptons.
	Candidates [][]zz.Candidate
}

// Step returns the mask of a step, or false if the step was not run.
func (r *Result) Step(name string) (*roaring.Bitmap, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s.Mask, true
		}
	}
	return nil, false
}

// Passed reports whether event i passed every step.
func (r *Result) Passed(i int) bool {
	return r.Event.Contains(uint32(i))
}

// SelectedCount returns the number of selected events.
func (r *Result) SelectedCount() int {
	return int(r.Event.GetCardinality())
}

// SelectedLeptons returns the selected electrons and muons of event i.
func (r *Result) SelectedLeptons(ev *model.Event, i int) (electrons, muons []model.Lepton) {
	return model.Take(ev.Electrons, r.Electrons[i]), model.Take(ev.Muons, r.Muons[i])
}

// Selector runs the ordered selection steps over chunks. It is safe for
// concurrent use as long as its deduper is.
type Selector struct {
	electron ElectronCuts
	muon     MuonCuts
	event    EventCuts
	triggers []string
	lumiMask *LumiMask
	deduper  dedupe.Deduper
	disabled map[string]bool
}

// New creates a Selector with the default cuts.
func New(opts ...Option) *Selector {
	s := &Selector{
		electron: DefaultElectronCuts(),
		muon:     DefaultMuonCuts(),
		event:    DefaultEventCuts(),
		disabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a step runs for the given dataset kind.
func (s *Selector) Enabled(step string, kind model.DatasetKind) bool {
	if s.disabled[step] {
		return false
	}
	switch step {
	case StepJSON:
		return kind == model.Data
	case StepUniqueEvent:
		return kind == model.Data && s.deduper != nil
	case StepTrigger:
		return len(s.triggers) > 0
	default:
		return true
	}
}

// Select evaluates all enabled steps on the chunk.
func (s *Selector) Select(ctx context.Context, chunk *model.Chunk) *Result {
	n := chunk.Len()
	kind := chunk.Dataset.Kind
	res := &Result{
		N:          n,
		Electrons:  make([][]int, n),
		Muons:      make([][]int, n),
		Candidates: make([][]zz.Candidate, n),
	}

	var (
		golden      = roaring.New()
		unique      = roaring.New()
		trigger     = roaring.New()
		fourLeptons = roaring.New()
		leptonPt    = roaring.New()
		zCandidate  = roaring.New()
		z1Mass      = roaring.New()
		zzMass      = roaring.New()
	)

	var elePass, muPass func(model.Lepton) bool
	if s.Enabled(StepElectron, kind) {
		elePass = s.electron.Pass
	}
	if s.Enabled(StepMuon, kind) {
		muPass = s.muon.Pass
	}
	checkUnique := s.Enabled(StepUniqueEvent, kind)

	for i := range chunk.Events {
		ev := &chunk.Events[i]
		idx := uint32(i)

		if s.lumiMask.Contains(ev.Run, ev.LuminosityBlock) {
			golden.Add(idx)
		}
		if checkUnique && !s.deduper.SeenAndRecord(ctx, ev.Key()) {
			unique.Add(idx)
		}
		if s.fired(ev) {
			trigger.Add(idx)
		}

		res.Electrons[i] = selectObjects(ev.Electrons, elePass)
		res.Muons[i] = selectObjects(ev.Muons, muPass)
		electrons, muons := res.SelectedLeptons(ev, i)

		if len(electrons)+len(muons) >= s.event.MinLeptons {
			fourLeptons.Add(idx)
		}
		if lead, sub, ok := leadingPts(electrons, muons); ok &&
			lead > s.event.LeadingPt && sub > s.event.SubleadingPt {
			leptonPt.Add(idx)
		}

		cands := zz.Inclusive(electrons, muons)
		res.Candidates[i] = cands
		window, z1, zzm := s.candidateSteps(cands)
		if window {
			zCandidate.Add(idx)
		}
		if z1 {
			z1Mass.Add(idx)
		}
		if zzm {
			zzMass.Add(idx)
		}
	}

	all := roaring.New()
	all.AddRange(0, uint64(n))

	masks := map[string]*roaring.Bitmap{
		StepJSON:        golden,
		StepUniqueEvent: unique,
		StepTrigger:     trigger,
		StepElectron:    all,
		StepMuon:        all,
		StepFourLeptons: fourLeptons,
		StepLeptonPt:    leptonPt,
		StepZCandidate:  zCandidate,
		StepZ1Mass:      z1Mass,
		StepZZMass:      zzMass,
	}

	present := make([]*roaring.Bitmap, 0, len(masks))
	for _, name := range StepNames() {
		if !s.Enabled(name, kind) {
			continue
		}
		res.Steps = append(res.Steps, Step{Name: name, Mask: masks[name]})
		present = append(present, masks[name])
	}

	switch len(present) {
	case 0:
		res.Event = all.Clone()
	case 1:
		res.Event = present[0].Clone()
	default:
		res.Event = roaring.FastAnd(present...)
	}
	return res
}

func (s *Selector) fired(ev *model.Event) bool {
	for _, path := range s.triggers {
		if ev.Triggers[path] {
			return true
		}
	}
	return false
}

// candidateSteps applies the candidate cuts in sequence. Each cut is only
// evaluated on candidates that survived the previous ones, so the three
// results are nested.
func (s *Selector) candidateSteps(cands []zz.Candidate) (window, z1, zzm bool) {
	c := s.event
	in := func(m float64) bool { return m > c.ZMassMin && m < c.ZMassMax }
	for _, cand := range cands {
		if !in(cand.Z1.Mass()) || !in(cand.Z2.Mass()) {
			continue
		}
		window = true
		if cand.Z1.Mass() <= c.Z1MassMin {
			continue
		}
		z1 = true
		if cand.ZZ.Mass() <= c.ZZMassMin {
			continue
		}
		zzm = true
	}
	return window, z1, zzm
}
