package config

import (
	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/selection"
	"github.com/okian/h4l/internal/domain/zz"
)

// Validate checks ranges, cut ordering and names.
func (c *Config) Validate() error {
	if c.Runner.Addr == "" {
		return invalid("runner.addr must not be empty")
	}
	if c.Runner.WorkerCount <= 0 {
		return invalid("runner.worker_count must be positive, got %d", c.Runner.WorkerCount)
	}
	if c.Runner.QueueSize <= 0 {
		return invalid("runner.queue_size must be positive, got %d", c.Runner.QueueSize)
	}
	if _, err := zz.ParseStrategy(c.BestCandidate); err != nil {
		return invalid("best_candidate: %v", err)
	}

	cuts := c.Cuts
	if cuts.MinLeptons < 0 {
		return invalid("cuts.min_leptons must not be negative")
	}
	if cuts.ZMassMin >= cuts.ZMassMax {
		return invalid("cuts.z_mass_min %g must be below cuts.z_mass_max %g", cuts.ZMassMin, cuts.ZMassMax)
	}
	if cuts.SubleadingPt > cuts.LeadingPt {
		return invalid("cuts.subleading_pt %g exceeds cuts.leading_pt %g", cuts.SubleadingPt, cuts.LeadingPt)
	}

	for step := range c.Steps {
		if !selection.IsStep(step) {
			return invalid("steps: unknown step %q", step)
		}
	}
	if err := validateSF("scale_factors.electron", c.ScaleFactors.Electron); err != nil {
		return err
	}
	if err := validateSF("scale_factors.muon", c.ScaleFactors.Muon); err != nil {
		return err
	}
	if c.Luminosity <= 0 {
		return invalid("luminosity must be positive, got %g", c.Luminosity)
	}

	seen := make(map[string]bool)
	for _, d := range c.Generator.Datasets {
		if d.Name == "" || seen[d.Name] {
			return invalid("generator: dataset name %q empty or duplicated", d.Name)
		}
		seen[d.Name] = true
		kind, err := model.ParseDatasetKind(d.Kind)
		if err != nil {
			return invalid("generator.%s: %v", d.Name, err)
		}
		if d.Events < 0 || d.ChunkSize <= 0 {
			return invalid("generator.%s: events must be >= 0 and chunk_size > 0", d.Name)
		}
		if kind == model.Simulation {
			if _, ok := c.CrossSections[d.Process]; !ok {
				return invalid("generator.%s: no cross section for process %q", d.Name, d.Process)
			}
		}
	}
	return nil
}

// validateSF checks that every lepton passing the eligibility cuts falls
// inside the table binning.
func validateSF(key string, t SFTable) error {
	if len(t.PtEdges) < 2 || len(t.EtaEdges) < 2 {
		return invalid("%s: need at least one pt and one eta bin", key)
	}
	if t.MinPt < t.PtEdges[0] {
		return invalid("%s.min_pt %g below first pt edge %g", key, t.MinPt, t.PtEdges[0])
	}
	if t.EtaEdges[0] > 0 {
		return invalid("%s.eta_edges must start at or below 0, got %g", key, t.EtaEdges[0])
	}
	if last := t.EtaEdges[len(t.EtaEdges)-1]; t.MaxAbsEta > last {
		return invalid("%s.max_abs_eta %g above last eta edge %g", key, t.MaxAbsEta, last)
	}
	return nil
}
