package service

import (
	"fmt"
	"os"

	"github.com/okian/h4l/internal/config"
	"github.com/okian/h4l/internal/domain/analysis"
	"github.com/okian/h4l/internal/domain/categorization"
	"github.com/okian/h4l/internal/domain/corrections"
	"github.com/okian/h4l/internal/domain/dedupe"
	"github.com/okian/h4l/internal/domain/production"
	"github.com/okian/h4l/internal/domain/selection"
	"github.com/okian/h4l/internal/domain/zz"
)

// BuildAnalysis registers the categories and variables of the analysis.
// Calling it again on the same registry changes nothing.
func BuildAnalysis(cfg *config.Config, reg *analysis.Config) error {
	if err := analysis.AddAllCategories(reg); err != nil {
		return fmt.Errorf("register categories: %w", err)
	}
	if err := analysis.AddVariables(reg); err != nil {
		return fmt.Errorf("register variables: %w", err)
	}
	if cfg.CombineCategories {
		if err := analysis.AddCombinedCategories(reg); err != nil {
			return fmt.Errorf("combine categories: %w", err)
		}
	}
	return nil
}

// BuildSelector translates the configured cuts and toggles into a Selector.
// The deduper is only wired when unique_event is switched on.
func BuildSelector(cfg *config.Config, d dedupe.Deduper) (*selection.Selector, error) {
	opts := []selection.Option{
		selection.WithElectronCuts(selection.ElectronCuts(cfg.Electron)),
		selection.WithMuonCuts(selection.MuonCuts(cfg.Muon)),
		selection.WithEventCuts(selection.EventCuts(cfg.Cuts)),
	}
	if cfg.StepEnabled(selection.StepTrigger) {
		opts = append(opts, selection.WithTriggers(cfg.Triggers...))
	}
	if cfg.StepEnabled(selection.StepUniqueEvent) && d != nil {
		opts = append(opts, selection.WithDeduper(d))
	}
	if cfg.LumiMask != "" {
		m, err := loadLumiMask(cfg.LumiMask)
		if err != nil {
			return nil, err
		}
		opts = append(opts, selection.WithLumiMask(m))
	}

	var disabled []string
	for _, step := range selection.StepNames() {
		if !cfg.StepEnabled(step) {
			disabled = append(disabled, step)
		}
	}
	opts = append(opts, selection.WithDisabledSteps(disabled...))
	return selection.New(opts...), nil
}

func loadLumiMask(path string) (*selection.LumiMask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lumi mask: %w", err)
	}
	defer f.Close()
	m, err := selection.ParseLumiMask(f)
	if err != nil {
		return nil, fmt.Errorf("lumi mask %s: %w", path, err)
	}
	return m, nil
}

// BuildCorrector builds the lepton scale factor corrector.
func BuildCorrector(cfg *config.Config) (*corrections.Corrector, error) {
	ele, err := sfTable("electron_sf", cfg.ScaleFactors.Electron)
	if err != nil {
		return nil, err
	}
	mu, err := sfTable("muon_sf", cfg.ScaleFactors.Muon)
	if err != nil {
		return nil, err
	}
	return corrections.NewCorrector(
		corrections.WithElectronTable(ele),
		corrections.WithMuonTable(mu),
		corrections.WithElectronEligibility(corrections.Eligibility{
			MinPt: cfg.ScaleFactors.Electron.MinPt, MaxAbsEta: cfg.ScaleFactors.Electron.MaxAbsEta,
		}),
		corrections.WithMuonEligibility(corrections.Eligibility{
			MinPt: cfg.ScaleFactors.Muon.MinPt, MaxAbsEta: cfg.ScaleFactors.Muon.MaxAbsEta,
		}),
	), nil
}

func sfTable(name string, t config.SFTable) (*corrections.Table, error) {
	tbl, err := corrections.NewTable(name, t.PtEdges, t.EtaEdges, t.Values, t.Errors)
	if err != nil {
		return nil, fmt.Errorf("scale factors %s: %w", name, err)
	}
	return tbl, nil
}

// BuildProducer wires strategy, categories, corrections and, when sumWeights
// is non-nil, normalization weights.
func BuildProducer(cfg *config.Config, reg *analysis.Config, sumWeights map[int]float64) (*production.Producer, *categorization.Assigner, error) {
	strategy, err := zz.ParseStrategy(cfg.BestCandidate)
	if err != nil {
		return nil, nil, err
	}
	assigner, err := categorization.NewAssigner(reg, categorization.Builtin())
	if err != nil {
		return nil, nil, fmt.Errorf("categories: %w", err)
	}
	corrector, err := BuildCorrector(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []production.Option{
		production.WithStrategy(strategy),
		production.WithAssigner(assigner),
		production.WithCorrector(corrector),
	}
	if sumWeights != nil {
		opts = append(opts, production.WithNormalization(&production.Normalization{
			Luminosity:    cfg.Luminosity,
			CrossSections: cfg.CrossSectionsByID(),
			SumWeights:    sumWeights,
		}))
	}
	return production.New(opts...), assigner, nil
}
