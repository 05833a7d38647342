package selection

import "github.com/okian/h4l/internal/domain/dedupe"

// Option configures a Selector.
type Option func(*Selector)

// WithElectronCuts replaces the electron object cuts.
func WithElectronCuts(c ElectronCuts) Option {
	return func(s *Selector) { s.electron = c }
}

// WithMuonCuts replaces the muon object cuts.
func WithMuonCuts(c MuonCuts) Option {
	return func(s *Selector) { s.muon = c }
}

// WithEventCuts replaces the event-level thresholds.
func WithEventCuts(c EventCuts) Option {
	return func(s *Selector) { s.event = c }
}

// WithTriggers sets the HLT paths of the trigger step. Without paths the
// step is skipped.
func WithTriggers(paths ...string) Option {
	return func(s *Selector) { s.triggers = append([]string(nil), paths...) }
}

// WithLumiMask sets the golden luminosity mask used on data.
func WithLumiMask(m *LumiMask) Option {
	return func(s *Selector) { s.lumiMask = m }
}

// WithDeduper enables the unique_event step on data.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Selector) { s.deduper = d }
}

// WithDisabledSteps turns steps off. Disabling an object step keeps every
// lepton of that flavor.
func WithDisabledSteps(steps ...string) Option {
	return func(s *Selector) {
		for _, name := range steps {
			s.disabled[name] = true
		}
	}
}
