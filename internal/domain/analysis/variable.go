package analysis

import "github.com/okian/h4l/internal/domain/model"

// Binning is a regular binning: N bins between Min and Max.
type Binning struct {
	N   int
	Min float64
	Max float64
}

// Variable describes an observable.
type Variable struct {
	Name       string
	Expression string
	Binning    Binning
	Unit       string
	XTitle     string
	Discrete   bool
	// HasNull marks variables that use NullValue for undefined entries.
	HasNull   bool
	NullValue float64

	// Func evaluates function-expression variables on one event. It is nil
	// for column expressions.
	Func func(ev *model.Event) float64
}

// Eval evaluates a function-expression variable. ok is false for column
// expressions.
func (v Variable) Eval(ev *model.Event) (value float64, ok bool) {
	if v.Func == nil {
		return 0, false
	}
	return v.Func(ev), true
}

func count[T any](xs []T) float64 { return float64(len(xs)) }

func leadingJet(ev *model.Event, f func(model.Jet) float64) float64 {
	if len(ev.Jets) == 0 {
		return model.EmptyFloat
	}
	return f(ev.Jets[0])
}

func addVariables(c *Config) error {
	vars := []Variable{
		{Name: "event", Binning: Binning{1, 0, 1e9}, XTitle: "Event number"},
		{Name: "run", Binning: Binning{1, 100000, 500000}, XTitle: "Run number", Discrete: true},
		{Name: "lumi", Expression: "luminosityBlock", Binning: Binning{1, 0, 5000},
			XTitle: "Luminosity block", Discrete: true},
		{Name: "category_ids", Binning: Binning{20, 0, 100000}, XTitle: "Event category"},
		{Name: "n_jet", Binning: Binning{11, -0.5, 10.5}, XTitle: "Number of jets", Discrete: true,
			Func: func(ev *model.Event) float64 { return count(ev.Jets) }},
		{Name: "jets_pt", Expression: "Jet.pt", Binning: Binning{40, 0, 400}, Unit: "GeV",
			XTitle: "$p_{T}$ of all jets"},
		{Name: "muon_pt", Expression: "Muon.pt", Binning: Binning{40, 0, 400}, Unit: "GeV",
			XTitle: "$p_{T}$ of all $\\mu$"},
		{Name: "jet1_pt", Expression: "Jet.pt[:,0]", Binning: Binning{40, 0, 400}, Unit: "GeV",
			XTitle: "Jet 1 $p_{T}$", HasNull: true, NullValue: model.EmptyFloat,
			Func: func(ev *model.Event) float64 { return leadingJet(ev, func(j model.Jet) float64 { return j.Pt }) }},
		{Name: "jet1_eta", Expression: "Jet.eta[:,0]", Binning: Binning{30, -3, 3},
			XTitle: "Jet 1 $\\eta$", HasNull: true, NullValue: model.EmptyFloat,
			Func: func(ev *model.Event) float64 { return leadingJet(ev, func(j model.Jet) float64 { return j.Eta }) }},
		{Name: "m4l", Binning: Binning{100, 0, 200}, Unit: "GeV", XTitle: "$m_{4l}$",
			HasNull: true, NullValue: model.EmptyFloat},
		{Name: "electron_pt", Expression: "Electron.pt", Binning: Binning{40, 0, 400}, Unit: "GeV",
			XTitle: "$p_{T}$ of all e"},
		{Name: "electron_bdt", Expression: "Electron.mvaIso", Binning: Binning{40, 0, 1},
			XTitle: "Electron ID BDT"},
		{Name: "n_ele", Binning: Binning{11, -0.5, 10.5}, XTitle: "Number of electrons", Discrete: true,
			Func: func(ev *model.Event) float64 { return count(ev.Electrons) }},
		{Name: "n_mu", Binning: Binning{11, -0.5, 10.5}, XTitle: "Number of muons", Discrete: true,
			Func: func(ev *model.Event) float64 { return count(ev.Muons) }},
		{Name: "m4l_zoomed", Expression: "m4l", Binning: Binning{35, 105, 140}, Unit: "GeV",
			XTitle: "$m_{4l}$ (zoomed)", HasNull: true, NullValue: model.EmptyFloat},
		{Name: "z1_mass", Binning: Binning{60, 0, 120}, Unit: "GeV", XTitle: "$m_{Z1}$",
			HasNull: true, NullValue: model.EmptyFloat},
		{Name: "z2_mass", Binning: Binning{60, 0, 120}, Unit: "GeV", XTitle: "$m_{Z2}$",
			HasNull: true, NullValue: model.EmptyFloat},
	}
	for _, v := range vars {
		if err := c.AddVariable(v); err != nil {
			return err
		}
	}
	return nil
}
