// Package model contains the per-event objects passed between analysis stages.
package model

import (
	"math"

	"github.com/okian/h4l/internal/domain/fourvec"
)

// Flavor distinguishes the two charged-lepton collections.
type Flavor uint8

const (
	Electron Flavor = iota + 1
	Muon
)

func (f Flavor) String() string {
	switch f {
	case Electron:
		return "electron"
	case Muon:
		return "muon"
	default:
		return "unknown"
	}
}

// Lepton is one reconstructed electron or muon.
type Lepton struct {
	Pt     float64
	Eta    float64
	Phi    float64
	Mass   float64
	Charge int
	Flavor Flavor

	// Identification inputs shared by both flavors.
	Dxy    float64
	Dz     float64
	SIP3D  float64
	RelIso float64

	// Electron only.
	DeltaEtaSC float64 // supercluster eta minus track eta
	MvaIso     float64 // isolation MVA score
	MvaIsoWP   bool    // passes the configured MVA working point

	// Muon only.
	IsGlobal  bool
	IsTracker bool
	LooseID   bool
}

// P4 returns the lepton four-momentum.
func (l Lepton) P4() fourvec.P4 {
	return fourvec.FromPtEtaPhiM(l.Pt, l.Eta, l.Phi, l.Mass)
}

// SCEta returns the supercluster pseudorapidity of an electron.
func (l Lepton) SCEta() float64 {
	return l.Eta + l.DeltaEtaSC
}

// AbsEta returns |eta|, using the supercluster eta for electrons.
func (l Lepton) AbsEta() float64 {
	if l.Flavor == Electron {
		return math.Abs(l.SCEta())
	}
	return math.Abs(l.Eta)
}

// SplitByCharge partitions leptons into positive and negative lists, preserving order.
// Neutral entries are dropped.
func SplitByCharge(leptons []Lepton) (plus, minus []Lepton) {
	for _, l := range leptons {
		switch {
		case l.Charge > 0:
			plus = append(plus, l)
		case l.Charge < 0:
			minus = append(minus, l)
		}
	}
	return plus, minus
}

// Take returns leptons[idx[0]], leptons[idx[1]], ... in index order.
func Take(leptons []Lepton, idx []int) []Lepton {
	out := make([]Lepton, 0, len(idx))
	for _, i := range idx {
		out = append(out, leptons[i])
	}
	return out
}

// Jet is a reconstructed hadronic jet.
type Jet struct {
	Pt   float64
	Eta  float64
	Phi  float64
	Mass float64
}
