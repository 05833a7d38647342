// Package config defines the runner configuration and its defaults.
//
// Conventions:
//   - New returns a Config holding every default; Load layers a YAML file and
//     the environment on top of it.
//   - Validation errors wrap ErrInvalidConfig, load errors wrap ErrLoadConfig.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	Runner Runner `koanf:"runner"`

	// AnalysisName names the analysis configuration registry.
	AnalysisName string `koanf:"analysis_name"`
	// BestCandidate selects the ZZ candidate reduction: first or z1_closest.
	BestCandidate string `koanf:"best_candidate"`
	// CombineCategories adds the inclusive x channel combinations.
	CombineCategories bool `koanf:"combine_categories"`

	Cuts     Cuts         `koanf:"cuts"`
	Electron ElectronCuts `koanf:"electron"`
	Muon     MuonCuts     `koanf:"muon"`

	// Triggers lists the HLT paths of the trigger step.
	Triggers []string `koanf:"triggers"`
	// Steps toggles selection steps by name; missing steps are on, except
	// unique_event which is off unless set.
	Steps map[string]bool `koanf:"steps"`

	ScaleFactors ScaleFactors `koanf:"scale_factors"`

	// Luminosity in inverse picobarn.
	Luminosity float64 `koanf:"luminosity"`
	// CrossSections in picobarn keyed by process name.
	CrossSections map[string]float64 `koanf:"cross_sections"`
	// LumiMask is the path of a golden JSON file. Empty accepts all blocks.
	LumiMask string `koanf:"lumi_mask"`

	Generator Generator `koanf:"generator"`
}

// Runner configures the process around the analysis.
type Runner struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// QueueSize bounds the in-memory chunk queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of pipeline workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the unique_event key cache.
	DedupeSize int `koanf:"dedupe_size"`
	// ExitWhenDone stops the process after all generated chunks are processed.
	ExitWhenDone bool `koanf:"exit_when_done"`
}

// Cuts are the event selection thresholds in GeV.
type Cuts struct {
	MinLeptons   int     `koanf:"min_leptons"`
	LeadingPt    float64 `koanf:"leading_pt"`
	SubleadingPt float64 `koanf:"subleading_pt"`
	ZMassMin     float64 `koanf:"z_mass_min"`
	ZMassMax     float64 `koanf:"z_mass_max"`
	Z1MassMin    float64 `koanf:"z1_mass_min"`
	ZZMassMin    float64 `koanf:"zz_mass_min"`
}

// ElectronCuts are the electron object cuts.
type ElectronCuts struct {
	MinPt         float64 `koanf:"min_pt"`
	MaxEta        float64 `koanf:"max_eta"`
	MaxDxy        float64 `koanf:"max_dxy"`
	MaxDz         float64 `koanf:"max_dz"`
	MaxSIP3D      float64 `koanf:"max_sip3d"`
	RequireMvaIso bool    `koanf:"require_mva_iso"`
}

// MuonCuts are the muon object cuts.
type MuonCuts struct {
	MinPt          float64 `koanf:"min_pt"`
	MaxEta         float64 `koanf:"max_eta"`
	MaxDxy         float64 `koanf:"max_dxy"`
	MaxDz          float64 `koanf:"max_dz"`
	MaxSIP3D       float64 `koanf:"max_sip3d"`
	MaxRelIso      float64 `koanf:"max_rel_iso"`
	RequireLooseID bool    `koanf:"require_loose_id"`
}

// ScaleFactors configures the lepton scale factor lookups.
type ScaleFactors struct {
	Electron SFTable `koanf:"electron"`
	Muon     SFTable `koanf:"muon"`
}

// SFTable is a binned scale factor table with its lookup domain.
type SFTable struct {
	// MinPt and MaxAbsEta bound the leptons that are looked up at all.
	MinPt     float64     `koanf:"min_pt"`
	MaxAbsEta float64     `koanf:"max_abs_eta"`
	PtEdges   []float64   `koanf:"pt_edges"`
	EtaEdges  []float64   `koanf:"eta_edges"`
	Values    [][]float64 `koanf:"values"`
	Errors    [][]float64 `koanf:"errors"`
}

// Generator configures the toy event source.
type Generator struct {
	Seed uint64 `koanf:"seed"`
	// Concurrency bounds the goroutines generating chunks.
	Concurrency int       `koanf:"concurrency"`
	Datasets    []Dataset `koanf:"datasets"`
}

// Dataset is one generated dataset.
type Dataset struct {
	Name      string `koanf:"name"`
	Kind      string `koanf:"kind"`
	Process   string `koanf:"process"`
	ProcessID int    `koanf:"process_id"`
	// Model picks the event model: higgs, zz or data. Data mixes both.
	Model     string `koanf:"model"`
	Events    int    `koanf:"events"`
	ChunkSize int    `koanf:"chunk_size"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		Runner: Runner{
			LogLevel:    "info",
			Addr:        ":9080",
			QueueSize:   1024,
			WorkerCount: runtime.NumCPU(),
			DedupeSize:  1 << 20,
		},
		AnalysisName:  "run2_2018_nano",
		BestCandidate: "first",
		Cuts: Cuts{
			MinLeptons:   4,
			LeadingPt:    20,
			SubleadingPt: 10,
			ZMassMin:     12,
			ZMassMax:     120,
			Z1MassMin:    40,
			ZZMassMin:    70,
		},
		Electron: ElectronCuts{
			MinPt: 7, MaxEta: 2.5, MaxDxy: 0.5, MaxDz: 1, MaxSIP3D: 4, RequireMvaIso: true,
		},
		Muon: MuonCuts{
			MinPt: 5, MaxEta: 2.4, MaxDxy: 0.5, MaxDz: 1, MaxSIP3D: 4, MaxRelIso: 0.35, RequireLooseID: true,
		},
		Triggers: []string{
			"Ele32_WPTight_Gsf",
			"IsoMu24",
			"Ele23_Ele12_CaloIdL_TrackIdL_IsoVL",
			"Mu17_TrkIsoVVL_Mu8_TrkIsoVVL_DZ_Mass3p8",
			"Mu8_TrkIsoVVL_Ele23_CaloIdL_TrackIdL_IsoVL_DZ",
		},
		Steps: map[string]bool{},
		ScaleFactors: ScaleFactors{
			Electron: SFTable{
				MinPt: 10, MaxAbsEta: 2.5,
				PtEdges:  []float64{10, 20, 50, 13000},
				EtaEdges: []float64{0, 1.479, 2.5},
				Values:   [][]float64{{0.95, 0.92}, {0.98, 0.97}, {0.99, 0.98}},
				Errors:   [][]float64{{0.03, 0.04}, {0.01, 0.02}, {0.01, 0.02}},
			},
			Muon: SFTable{
				MinPt: 15, MaxAbsEta: 2.4,
				PtEdges:  []float64{15, 30, 60, 13000},
				EtaEdges: []float64{0, 0.9, 1.2, 2.4},
				Values:   [][]float64{{0.98, 0.97, 0.97}, {0.99, 0.99, 0.98}, {0.995, 0.99, 0.99}},
				Errors:   [][]float64{{0.01, 0.01, 0.02}, {0.005, 0.005, 0.01}, {0.005, 0.005, 0.01}},
			},
		},
		Luminosity: 59830,
		CrossSections: map[string]float64{
			"ggH_ZZ_4l": 0.0133,
			"qqZZ_4l":   1.256,
		},
		Generator: Generator{
			Seed:        42,
			Concurrency: runtime.NumCPU(),
			Datasets: []Dataset{
				{Name: "ggH_ZZ_4l", Kind: "simulation", Process: "ggH_ZZ_4l", ProcessID: 100, Model: "higgs", Events: 20000, ChunkSize: 1000},
				{Name: "qqZZ_4l", Kind: "simulation", Process: "qqZZ_4l", ProcessID: 200, Model: "zz", Events: 20000, ChunkSize: 1000},
				{Name: "DoubleMuon_2018", Kind: "data", Process: "data", ProcessID: 1, Model: "data", Events: 5000, ChunkSize: 1000},
			},
		},
	}
}

// StepEnabled reports whether a selection step is switched on.
func (c *Config) StepEnabled(step string) bool {
	on, ok := c.Steps[step]
	if !ok {
		return step != "unique_event"
	}
	return on
}

// CrossSectionsByID maps the configured cross sections onto the process ids
// of the generated simulation datasets.
func (c *Config) CrossSectionsByID() map[int]float64 {
	out := make(map[int]float64)
	for _, d := range c.Generator.Datasets {
		if xs, ok := c.CrossSections[d.Process]; ok {
			out[d.ProcessID] = xs
		}
	}
	return out
}
