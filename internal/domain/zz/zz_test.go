package zz_test

import (
	"math"
	"testing"

	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/zz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lep(fl model.Flavor, charge int, pt, eta, phi float64) model.Lepton {
	return model.Lepton{Pt: pt, Eta: eta, Phi: phi, Charge: charge, Flavor: fl}
}

// quad returns e+ e+ / e- e- where p0+m0 has mass 91 and p1+m1 mass 85.
func quad(fl model.Flavor) (plus, minus []model.Lepton) {
	plus = []model.Lepton{
		lep(fl, +1, 45.5, 0, 0),
		lep(fl, +1, 42.5, 0, math.Pi/2),
	}
	minus = []model.Lepton{
		lep(fl, -1, 45.5, 0, math.Pi),
		lep(fl, -1, 42.5, 0, -math.Pi/2),
	}
	return plus, minus
}

func assertProximity(t *testing.T, c zz.Candidate) {
	t.Helper()
	d1 := math.Abs(c.Z1.Mass() - zz.NominalZMass)
	d2 := math.Abs(c.Z2.Mass() - zz.NominalZMass)
	assert.LessOrEqual(t, d1, d2)
	assert.Equal(t, c.Z1.Add(c.Z2), c.ZZ)
}

func TestBuild4SFQuadrupletYieldsBothPairings(t *testing.T) {
	plus, minus := quad(model.Electron)
	cands := zz.Build4SF(plus, minus, zz.Channel4e)
	require.Len(t, cands, 2)

	// Pairing A.
	assert.InDelta(t, 91.0, cands[0].Z1.Mass(), 1e-9)
	assert.InDelta(t, 85.0, cands[0].Z2.Mass(), 1e-9)

	// Pairing B: crossed legs at right angles.
	crossed := math.Sqrt(2 * 45.5 * 42.5)
	assert.InDelta(t, crossed, cands[1].Z1.Mass(), 1e-9)
	assert.InDelta(t, crossed, cands[1].Z2.Mass(), 1e-9)

	for _, c := range cands {
		assert.Equal(t, zz.Channel4e, c.Channel)
		assertProximity(t, c)
	}
}

// workedQuad returns a same-flavor quadruplet whose pairing A dileptons are
// (91, 85) and pairing B dileptons (p0+m1, p1+m0) are (70, 95).
func workedQuad(fl model.Flavor) (plus, minus []model.Lepton) {
	// Legs of each pairing-A dilepton are back to back; the two axes are
	// rotated by theta so the crossed masses come out at 70 and 95.
	theta := math.Acos(2*70.0*95.0/(91.0*85.0) - 1)
	plus = []model.Lepton{
		lep(fl, +1, 45.5, 0, 0),
		lep(fl, +1, 85.0/2*95.0/70.0, 0, theta),
	}
	minus = []model.Lepton{
		lep(fl, -1, 45.5, 0, math.Pi),
		lep(fl, -1, 85.0/2*70.0/95.0, 0, theta-math.Pi),
	}
	return plus, minus
}

func TestBuild4SFWorkedExample(t *testing.T) {
	plus, minus := workedQuad(model.Muon)
	cands := zz.Build4SF(plus, minus, zz.Channel4mu)
	require.Len(t, cands, 2)

	// Pairing A keeps the first dilepton as Z1.
	assert.InDelta(t, 91.0, cands[0].Z1.Mass(), 1e-6)
	assert.InDelta(t, 85.0, cands[0].Z2.Mass(), 1e-6)

	// Pairing B promotes the second dilepton, 95, to Z1.
	assert.InDelta(t, 95.0, cands[1].Z1.Mass(), 1e-6)
	assert.InDelta(t, 70.0, cands[1].Z2.Mass(), 1e-6)

	for _, c := range cands {
		assertProximity(t, c)
	}
}

func TestBuild4SFCombinatorics(t *testing.T) {
	plus := []model.Lepton{
		lep(model.Muon, +1, 30, 0.1, 0.2),
		lep(model.Muon, +1, 25, -0.4, 1.9),
		lep(model.Muon, +1, 12, 1.2, -2.2),
	}
	minus := []model.Lepton{
		lep(model.Muon, -1, 28, 0.6, 2.8),
		lep(model.Muon, -1, 9, -1.5, -0.7),
	}
	cands := zz.Build4SF(plus, minus, zz.Channel4mu)
	// C(3,2) * C(2,2) quadruplets, two pairings each.
	require.Len(t, cands, 6)
	for _, c := range cands {
		assertProximity(t, c)
	}

	// Pairing-A candidates come first: their ZZ equals the B one of the same quadruplet.
	for i := 0; i < 3; i++ {
		assert.InDelta(t, cands[i].ZZ.Mass(), cands[i+3].ZZ.Mass(), 1e-9)
	}
}

func TestBuild4SFTooFewLeptons(t *testing.T) {
	plus, minus := quad(model.Muon)
	assert.Empty(t, zz.Build4SF(plus[:1], minus, zz.Channel4mu))
	assert.Empty(t, zz.Build4SF(plus, minus[:1], zz.Channel4mu))
	assert.Empty(t, zz.Build4SF(nil, nil, zz.Channel4mu))
}

func TestBuild2e2mu(t *testing.T) {
	muPlus := []model.Lepton{lep(model.Muon, +1, 45.5, 0, 0)}
	muMinus := []model.Lepton{lep(model.Muon, -1, 45.5, 0, math.Pi)}
	elePlus := []model.Lepton{lep(model.Electron, +1, 15, 0.3, 1.0)}
	eleMinus := []model.Lepton{lep(model.Electron, -1, 15, -0.3, -2.0)}

	cands := zz.Build2e2mu(muPlus, muMinus, elePlus, eleMinus)
	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, zz.Channel2e2mu, c.Channel)
	assert.InDelta(t, 91.0, c.Z1.Mass(), 1e-9)
	assertProximity(t, c)

	t.Run("electron pair closer becomes Z1", func(t *testing.T) {
		softMu := []model.Lepton{lep(model.Muon, +1, 10, 0, 0)}
		softMuMinus := []model.Lepton{lep(model.Muon, -1, 10, 0, math.Pi)}
		hardE := []model.Lepton{lep(model.Electron, +1, 45, 0, 0.5)}
		hardEMinus := []model.Lepton{lep(model.Electron, -1, 45, 0, 0.5+math.Pi)}
		cands := zz.Build2e2mu(softMu, softMuMinus, hardE, hardEMinus)
		require.Len(t, cands, 1)
		assert.InDelta(t, 90.0, cands[0].Z1.Mass(), 1e-9)
		assert.InDelta(t, 20.0, cands[0].Z2.Mass(), 1e-9)
	})

	t.Run("cartesian product over all charges", func(t *testing.T) {
		twoMuPlus := append(muPlus, lep(model.Muon, +1, 20, 1, 1))
		cands := zz.Build2e2mu(twoMuPlus, muMinus, elePlus, append(eleMinus, lep(model.Electron, -1, 8, 0, 0)))
		assert.Len(t, cands, 4)
	})

	t.Run("missing charge yields nothing", func(t *testing.T) {
		assert.Empty(t, zz.Build2e2mu(muPlus, nil, elePlus, eleMinus))
		assert.Empty(t, zz.Build2e2mu(muPlus, muMinus, elePlus, nil))
	})
}

func TestThreeLeptonsYieldNothing(t *testing.T) {
	electrons := []model.Lepton{
		lep(model.Electron, +1, 30, 0, 0),
		lep(model.Electron, -1, 30, 0, 3),
	}
	muons := []model.Lepton{lep(model.Muon, +1, 20, 0, 1)}
	assert.Empty(t, zz.Inclusive(electrons, muons))

	threeE := append(electrons, lep(model.Electron, +1, 10, 1, 1))
	assert.Empty(t, zz.Inclusive(threeE, nil))
}

func TestInclusiveOrder(t *testing.T) {
	ep, em := quad(model.Electron)
	mp, mm := quad(model.Muon)
	electrons := append(append([]model.Lepton{}, ep...), em...)
	muons := append(append([]model.Lepton{}, mp...), mm...)

	cands := zz.Inclusive(electrons, muons)
	// 2*2*2*2 mixed, then two 4e pairings, then two 4mu pairings.
	require.Len(t, cands, 20)
	for i, c := range cands {
		switch {
		case i < 16:
			assert.Equal(t, zz.Channel2e2mu, c.Channel)
		case i < 18:
			assert.Equal(t, zz.Channel4e, c.Channel)
		default:
			assert.Equal(t, zz.Channel4mu, c.Channel)
		}
		assertProximity(t, c)
	}

	chunk := zz.InclusiveChunk([][]model.Lepton{electrons, nil}, [][]model.Lepton{muons, nil})
	require.Len(t, chunk, 2)
	assert.Len(t, chunk[0], 20)
	assert.Empty(t, chunk[1])
}

func TestBest(t *testing.T) {
	plus, minus := quad(model.Electron)
	cands := zz.Build4SF(plus, minus, zz.Channel4e)

	_, ok := zz.Best(nil, zz.StrategyFirst)
	assert.False(t, ok)

	first, ok := zz.Best(cands, zz.StrategyFirst)
	require.True(t, ok)
	assert.Equal(t, cands[0], first)

	// Put the worse pairing in front; z1_closest still finds pairing A.
	reversed := []zz.Candidate{cands[1], cands[0]}
	first, _ = zz.Best(reversed, zz.StrategyFirst)
	assert.Equal(t, cands[1], first)
	closest, ok := zz.Best(reversed, zz.StrategyZ1Closest)
	require.True(t, ok)
	assert.Equal(t, cands[0], closest)
}

func TestParseStrategy(t *testing.T) {
	s, err := zz.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, zz.StrategyFirst, s)

	s, err = zz.ParseStrategy("z1_closest")
	require.NoError(t, err)
	assert.Equal(t, zz.StrategyZ1Closest, s)

	_, err = zz.ParseStrategy("chi2")
	assert.Error(t, err)
}
