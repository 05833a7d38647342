package selection

import (
	"math"
	"sort"

	"github.com/okian/h4l/internal/domain/model"
)

// ElectronCuts are the electron identification, isolation and kinematic cuts.
type ElectronCuts struct {
	MinPt    float64
	MaxEta   float64 // applied to the supercluster eta
	MaxDxy   float64
	MaxDz    float64
	MaxSIP3D float64
	// RequireMvaIso demands the isolation MVA working point.
	RequireMvaIso bool
}

// DefaultElectronCuts returns the HZZ loose electron selection with MVA ID.
func DefaultElectronCuts() ElectronCuts {
	return ElectronCuts{
		MinPt:         7,
		MaxEta:        2.5,
		MaxDxy:        0.5,
		MaxDz:         1,
		MaxSIP3D:      4,
		RequireMvaIso: true,
	}
}

// Pass reports whether one electron is selected.
func (c ElectronCuts) Pass(l model.Lepton) bool {
	return l.Pt > c.MinPt &&
		math.Abs(l.SCEta()) < c.MaxEta &&
		math.Abs(l.Dxy) < c.MaxDxy &&
		math.Abs(l.Dz) < c.MaxDz &&
		math.Abs(l.SIP3D) < c.MaxSIP3D &&
		(!c.RequireMvaIso || l.MvaIsoWP)
}

// MuonCuts are the muon identification, isolation and kinematic cuts.
type MuonCuts struct {
	MinPt     float64
	MaxEta    float64
	MaxDxy    float64
	MaxDz     float64
	MaxSIP3D  float64
	MaxRelIso float64
	// RequireLooseID demands (global or tracker) and the loose ID flag.
	RequireLooseID bool
}

// DefaultMuonCuts returns the HZZ loose isolated muon selection.
func DefaultMuonCuts() MuonCuts {
	return MuonCuts{
		MinPt:          5,
		MaxEta:         2.4,
		MaxDxy:         0.5,
		MaxDz:          1,
		MaxSIP3D:       4,
		MaxRelIso:      0.35,
		RequireLooseID: true,
	}
}

// Pass reports whether one muon is selected.
func (c MuonCuts) Pass(l model.Lepton) bool {
	if c.RequireLooseID && !(l.LooseID && (l.IsGlobal || l.IsTracker)) {
		return false
	}
	return l.Pt > c.MinPt &&
		math.Abs(l.Eta) < c.MaxEta &&
		math.Abs(l.Dxy) < c.MaxDxy &&
		math.Abs(l.Dz) < c.MaxDz &&
		math.Abs(l.SIP3D) < c.MaxSIP3D &&
		l.RelIso < c.MaxRelIso
}

// selectObjects returns the indices of leptons accepted by pass, ordered by
// pt descending. A nil pass keeps every lepton.
func selectObjects(leptons []model.Lepton, pass func(model.Lepton) bool) []int {
	idx := make([]int, 0, len(leptons))
	for i, l := range leptons {
		if pass == nil || pass(l) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return leptons[idx[a]].Pt > leptons[idx[b]].Pt
	})
	return idx
}

// leadingPts returns the two highest pts of the combined lepton list.
// ok is false when there are fewer than two leptons.
func leadingPts(electrons, muons []model.Lepton) (lead, sublead float64, ok bool) {
	n := 0
	for _, coll := range [][]model.Lepton{electrons, muons} {
		for _, l := range coll {
			n++
			switch {
			case l.Pt > lead:
				lead, sublead = l.Pt, lead
			case l.Pt > sublead:
				sublead = l.Pt
			}
		}
	}
	return lead, sublead, n >= 2
}
