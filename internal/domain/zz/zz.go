// Package zz builds Z and ZZ candidates from same-flavor opposite-sign
// lepton pairs.
//
// Builders work on one event at a time and never fail: an event without
// enough leptons of the required charges simply yields no candidates.
package zz

import (
	"math"

	"github.com/okian/h4l/internal/domain/fourvec"
	"github.com/okian/h4l/internal/domain/model"
)

// NominalZMass is the reference Z boson mass used to tell Z1 from Z2.
const NominalZMass = 91.1876

// Channel names a four-lepton final state.
type Channel string

const (
	Channel2e2mu Channel = "2e2mu"
	Channel4e    Channel = "4e"
	Channel4mu   Channel = "4mu"
)

// Candidate is one ZZ hypothesis. Z1 is the dilepton closer to the nominal Z mass.
type Candidate struct {
	Z1      fourvec.P4
	Z2      fourvec.P4
	ZZ      fourvec.P4
	Channel Channel
}

func newCandidate(a, b fourvec.P4, ch Channel) Candidate {
	z1, z2 := b, a
	if closer(a, b) {
		z1, z2 = a, b
	}
	return Candidate{Z1: z1, Z2: z2, ZZ: z1.Add(z2), Channel: ch}
}

// closer reports whether a is strictly closer to the nominal Z mass than b.
func closer(a, b fourvec.P4) bool {
	return math.Abs(a.Mass()-NominalZMass) < math.Abs(b.Mass()-NominalZMass)
}

type pair struct{ a, b fourvec.P4 }

// combinations2 returns all unordered pairs i<j in lexicographic order.
func combinations2(leptons []model.Lepton) []pair {
	if len(leptons) < 2 {
		return nil
	}
	out := make([]pair, 0, len(leptons)*(len(leptons)-1)/2)
	for i := 0; i < len(leptons); i++ {
		for j := i + 1; j < len(leptons); j++ {
			out = append(out, pair{a: leptons[i].P4(), b: leptons[j].P4()})
		}
	}
	return out
}

// Build4SF builds the candidates of a four same-flavor final state.
//
// Every pair of positive leptons is combined with every pair of negative
// leptons. Each quadruplet can be split into two opposite-sign dileptons in
// two ways: A = {p0+m0, p1+m1} and B = {p0+m1, p1+m0}. All A candidates come
// first, followed by all B candidates.
func Build4SF(plus, minus []model.Lepton, ch Channel) []Candidate {
	pp := combinations2(plus)
	mm := combinations2(minus)
	if len(pp) == 0 || len(mm) == 0 {
		return nil
	}

	n := len(pp) * len(mm)
	out := make([]Candidate, 2*n)
	k := 0
	for _, p := range pp {
		for _, m := range mm {
			out[k] = newCandidate(p.a.Add(m.a), p.b.Add(m.b), ch)
			out[n+k] = newCandidate(p.a.Add(m.b), p.b.Add(m.a), ch)
			k++
		}
	}
	return out
}

// Build2e2mu builds the candidates of the mixed-flavor final state. The muon
// pair becomes Z1 only when it is strictly closer to the nominal Z mass.
func Build2e2mu(muPlus, muMinus, elePlus, eleMinus []model.Lepton) []Candidate {
	n := len(muPlus) * len(muMinus) * len(elePlus) * len(eleMinus)
	if n == 0 {
		return nil
	}
	out := make([]Candidate, 0, n)
	for _, mp := range muPlus {
		for _, mm := range muMinus {
			zmu := mp.P4().Add(mm.P4())
			for _, ep := range elePlus {
				for _, em := range eleMinus {
					ze := ep.P4().Add(em.P4())
					out = append(out, newCandidate(zmu, ze, Channel2e2mu))
				}
			}
		}
	}
	return out
}

// Inclusive builds the candidates of all three final states for one event and
// concatenates them in the order 2e2mu, 4e, 4mu.
func Inclusive(electrons, muons []model.Lepton) []Candidate {
	ep, em := model.SplitByCharge(electrons)
	mp, mm := model.SplitByCharge(muons)

	out := Build2e2mu(mp, mm, ep, em)
	out = append(out, Build4SF(ep, em, Channel4e)...)
	out = append(out, Build4SF(mp, mm, Channel4mu)...)
	return out
}

// InclusiveChunk applies Inclusive event by event.
func InclusiveChunk(electrons, muons [][]model.Lepton) [][]Candidate {
	out := make([][]Candidate, len(electrons))
	for i := range electrons {
		out[i] = Inclusive(electrons[i], muons[i])
	}
	return out
}
