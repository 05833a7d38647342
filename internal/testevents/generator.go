// Package testevents generates toy H->ZZ->4l and background chunks.
package testevents

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/h4l/internal/domain/fourvec"
	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/pkg/logger"
)

// chunkNamespace scopes the deterministic chunk ids.
var chunkNamespace = uuid.MustParse("6f1c2f7e-8d3b-4e0a-9b61-4a1d2c3e5f70")

// Generate builds every chunk of every dataset, in dataset then chunk order.
func Generate(ctx context.Context, cfg Config) ([]*model.Chunk, error) {
	type job struct {
		ds    Dataset
		index int
		first int
		n     int
	}
	var jobs []job
	for _, ds := range cfg.Datasets {
		if ds.ChunkSize <= 0 || ds.Events < 0 {
			return nil, fmt.Errorf("dataset %s: invalid size", ds.Name)
		}
		for first, idx := 0, 0; first < ds.Events; first, idx = first+ds.ChunkSize, idx+1 {
			jobs = append(jobs, job{ds: ds, index: idx, first: first, n: min(ds.ChunkSize, ds.Events-first)})
		}
	}

	chunks := make([]*model.Chunk, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks[i] = GenerateChunk(cfg.Seed, j.ds, j.index, j.first, j.n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate chunks: %w", err)
	}

	logger.Get().Info(ctx, "generated chunks",
		logger.Int("datasets", len(cfg.Datasets)),
		logger.Int("chunks", len(chunks)),
	)
	return chunks, nil
}

// GenerateChunk builds one chunk. Events are numbered from first.
func GenerateChunk(seed uint64, ds Dataset, index, first, n int) *model.Chunk {
	key := ds.Name + "/" + strconv.Itoa(index)
	g := &gen{r: rand.New(rand.NewPCG(seed, xxhash.Sum64String(key)))}

	c := &model.Chunk{
		ID:      uuid.NewSHA1(chunkNamespace, []byte(key)).String(),
		Dataset: model.Dataset{Name: ds.Name, Kind: ds.Kind, ProcessID: ds.ProcessID},
		Events:  make([]model.Event, 0, n),
	}
	for i := 0; i < n; i++ {
		num := uint64(first + i + 1)
		if ds.Model == ModelData && i > 0 && g.r.Float64() < duplicateProb {
			dup := c.Events[g.r.IntN(len(c.Events))]
			c.Events = append(c.Events, dup)
			continue
		}
		c.Events = append(c.Events, g.event(ds, num))
	}
	return c
}

type gen struct {
	r *rand.Rand
}

func (g *gen) event(ds Dataset, num uint64) model.Event {
	m := ds.Model
	if m == ModelData {
		m = ModelZZ
		if g.r.Float64() < dataHiggsFrac {
			m = ModelHiggs
		}
	}

	var zs [2]fourvec.P4
	if m == ModelHiggs {
		zs = g.higgs()
	} else {
		zs = g.zz()
	}

	ev := model.Event{Triggers: map[string]bool{}}
	for _, z := range zs {
		fl := model.Muon
		if g.r.IntN(2) == 0 {
			fl = model.Electron
		}
		a, b := g.leptonPair(z, fl)
		ev.Electrons, ev.Muons = appendByFlavor(ev.Electrons, ev.Muons, a, b)
	}
	if g.r.Float64() < extraLeptonProb {
		fl := model.Muon
		if g.r.IntN(2) == 0 {
			fl = model.Electron
		}
		extra := g.lepton(fourvec.FromPtEtaPhiM(3+12*g.r.Float64(), g.uniform(-maxRapidity, maxRapidity), g.phi(), leptonMass(fl)), fl, g.charge())
		ev.Electrons, ev.Muons = appendByFlavor(ev.Electrons, ev.Muons, extra)
	}
	sortByPt(ev.Electrons)
	sortByPt(ev.Muons)
	ev.Jets = g.jets()
	emulateTriggers(&ev)

	switch ds.Kind {
	case model.Data:
		ev.Run = dataFirstRun + uint32(num/(lumisPerRun*eventsPerLS))
		ev.LuminosityBlock = 1 + uint32(num/eventsPerLS)%lumisPerRun
	default:
		ev.Run = mcRun
		ev.LuminosityBlock = 1 + uint32(num/eventsPerLS)
		ev.GenWeight = 1
		if m == ModelZZ && g.r.Float64() < negWeightProb {
			ev.GenWeight = -1
		}
	}
	ev.Event = num
	return ev
}

// higgs returns an on-shell Z and an off-shell Z* from a 125 GeV parent.
func (g *gen) higgs() [2]fourvec.P4 {
	for range maxAttempts {
		mH := higgsMass + higgsSigma*g.r.NormFloat64()
		m1 := g.breitWigner(zMass, zWidth)
		if m1 >= mH-minZStar {
			continue
		}
		m2 := g.uniform(minZStar, mH-m1)
		if z1, z2, ok := g.decay(mH, meanHiggsPt, m1, m2); ok {
			return [2]fourvec.P4{z1, z2}
		}
	}
	return g.zz()
}

// zz returns two on-shell Z bosons with a falling m4l spectrum.
func (g *gen) zz() [2]fourvec.P4 {
	for {
		m1 := g.breitWigner(zMass, zWidth)
		m2 := g.breitWigner(zMass, zWidth)
		if m1 <= minZStar || m2 <= minZStar {
			continue
		}
		mZZ := math.Max(m1+m2, zzThreshold) + meanZZExcess*g.r.ExpFloat64()
		if z1, z2, ok := g.decay(mZZ, meanZZPt, m1, m2); ok {
			return [2]fourvec.P4{z1, z2}
		}
	}
}

// decay boosts a parent of mass m with exponential pt and splits it.
func (g *gen) decay(m, meanPt, m1, m2 float64) (d1, d2 fourvec.P4, ok bool) {
	pt := meanPt * g.r.ExpFloat64()
	y := g.uniform(-maxRapidity, maxRapidity)
	mt := math.Hypot(m, pt)
	phi := g.phi()
	parent := fourvec.P4{
		Px: pt * math.Cos(phi),
		Py: pt * math.Sin(phi),
		Pz: mt * math.Sinh(y),
		E:  mt * math.Cosh(y),
	}
	return fourvec.TwoBodyDecay(parent, m1, m2, g.uniform(-1, 1), g.phi())
}

func (g *gen) leptonPair(z fourvec.P4, fl model.Flavor) (a, b model.Lepton) {
	m := leptonMass(fl)
	p1, p2, ok := fourvec.TwoBodyDecay(z, m, m, g.uniform(-1, 1), g.phi())
	if !ok {
		p1, p2 = z, fourvec.P4{}
	}
	q := g.charge()
	return g.lepton(p1, fl, q), g.lepton(p2, fl, -q)
}

func (g *gen) lepton(p fourvec.P4, fl model.Flavor, charge int) model.Lepton {
	l := model.Lepton{
		Pt:     p.Pt(),
		Eta:    p.Eta(),
		Phi:    p.Phi(),
		Mass:   leptonMass(fl),
		Charge: charge,
		Flavor: fl,
		Dxy:    sigmaDxy * g.r.NormFloat64(),
		Dz:     sigmaDz * g.r.NormFloat64(),
		SIP3D:  math.Abs(sigmaSIP * g.r.NormFloat64()),
		RelIso: meanRelIso * g.r.ExpFloat64(),
	}
	if fl == model.Electron {
		l.DeltaEtaSC = sigmaDeltaSC * g.r.NormFloat64()
		l.MvaIso = g.uniform(-1, 1)
		l.MvaIsoWP = g.r.Float64() < mvaIsoEff
		return l
	}
	l.IsTracker = true
	l.IsGlobal = g.r.Float64() >= trackerOnlyEff
	l.LooseID = g.r.Float64() < looseIDEff
	return l
}

func (g *gen) jets() []model.Jet {
	// Poisson by inversion.
	n, p, limit := 0, g.r.Float64(), math.Exp(-meanJets)
	for p > limit {
		n++
		p *= g.r.Float64()
	}
	jets := make([]model.Jet, n)
	for i := range jets {
		jets[i] = model.Jet{
			Pt:   minJetPt + meanJetPtExcess*g.r.ExpFloat64(),
			Eta:  g.uniform(-4.7, 4.7),
			Phi:  g.phi(),
			Mass: 5 + 10*g.r.Float64(),
		}
	}
	sort.Slice(jets, func(i, j int) bool { return jets[i].Pt > jets[j].Pt })
	return jets
}

func (g *gen) breitWigner(m0, width float64) float64 {
	return m0 + width/2*math.Tan(math.Pi*(g.r.Float64()-0.5))
}

func (g *gen) uniform(lo, hi float64) float64 { return lo + (hi-lo)*g.r.Float64() }

func (g *gen) phi() float64 { return g.uniform(-math.Pi, math.Pi) }

func (g *gen) charge() int {
	if g.r.IntN(2) == 0 {
		return -1
	}
	return 1
}

func leptonMass(fl model.Flavor) float64 {
	if fl == model.Electron {
		return electronM
	}
	return muonM
}

func appendByFlavor(electrons, muons []model.Lepton, ls ...model.Lepton) (e, m []model.Lepton) {
	for _, l := range ls {
		if l.Flavor == model.Electron {
			electrons = append(electrons, l)
		} else {
			muons = append(muons, l)
		}
	}
	return electrons, muons
}

func sortByPt(ls []model.Lepton) {
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].Pt > ls[j].Pt })
}

// emulateTriggers fires the HLT paths whose lepton thresholds are met.
func emulateTriggers(ev *model.Event) {
	e1, e2 := leading(ev.Electrons)
	m1, m2 := leading(ev.Muons)
	ev.Triggers[pathSingleEle] = e1 > 32
	ev.Triggers[pathSingleMu] = m1 > 24
	ev.Triggers[pathDoubleEle] = e1 > 23 && e2 > 12
	ev.Triggers[pathDoubleMu] = m1 > 17 && m2 > 8
	ev.Triggers[pathMuEle] = m1 > 8 && e1 > 23
}

func leading(ls []model.Lepton) (first, second float64) {
	if len(ls) > 0 {
		first = ls[0].Pt
	}
	if len(ls) > 1 {
		second = ls[1].Pt
	}
	return first, second
}
