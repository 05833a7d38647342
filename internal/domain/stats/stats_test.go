package stats_test

import (
	"context"
	"math"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/selection"
	"github.com/okian/h4l/internal/domain/stats"
)

func pair(fl model.Flavor, pt, phi float64) []model.Lepton {
	mk := func(q int, phi float64) model.Lepton {
		return model.Lepton{
			Pt: pt, Phi: phi, Charge: q, Flavor: fl,
			MvaIsoWP: true, LooseID: true, IsGlobal: true,
		}
	}
	return []model.Lepton{mk(+1, phi), mk(-1, phi+math.Pi)}
}

// chunk has one passing event (weight 2), one with two leptons (weight 1)
// and one empty event (weight -0.5).
func chunk(kind model.DatasetKind) *model.Chunk {
	return &model.Chunk{
		Dataset: model.Dataset{Name: "ggH", Kind: kind, ProcessID: 10},
		Events: []model.Event{
			{Event: 1, GenWeight: 2, Electrons: pair(model.Electron, 45.5, 0), Muons: pair(model.Muon, 42.5, math.Pi/2)},
			{Event: 2, GenWeight: 1, Electrons: pair(model.Electron, 45.5, 0)},
			{Event: 3, GenWeight: -0.5},
		},
	}
}

func TestAccumulator(t *testing.T) {
	Convey("Given an accumulator and a selected simulation chunk", t, func() {
		acc := stats.New()
		c := chunk(model.Simulation)
		res := selection.New().Select(context.Background(), c)

		Convey("When the chunk is added twice", func() {
			sum := acc.Add(c, res, [][]int{{1, 30}, nil, nil})
			acc.Add(c, res, [][]int{{1, 30}, nil, nil})

			Convey("Then the chunk summary reflects one chunk", func() {
				So(sum.NumEvents, ShouldEqual, 3)
				So(sum.NumEventsSelected, ShouldEqual, 1)
				So(sum.SumMCWeight, ShouldEqual, 2.5)
				So(sum.SumMCWeightSelected, ShouldEqual, 2)
				So(sum.Categories, ShouldResemble, map[int]int{1: 1, 30: 1})
				So(sum.Steps[0], ShouldResemble, stats.StepCount{Step: selection.StepElectron, Passed: 3})
			})

			Convey("Then the dataset totals are summed", func() {
				d, ok := acc.Dataset("ggH")
				So(ok, ShouldBeTrue)
				So(d.Chunks, ShouldEqual, 2)
				So(d.NumEvents, ShouldEqual, 6)
				So(d.NumEventsSelected, ShouldEqual, 2)
				So(d.SumMCWeight, ShouldEqual, 5)
				So(d.PerProcess[10].SumMCWeightSelected, ShouldEqual, 4)
				So(acc.SumMCWeight(10), ShouldEqual, 5)
				So(acc.Totals().NumEvents, ShouldEqual, 6)
				So(d.Categories[30], ShouldEqual, 2)
			})

			Convey("Then the cutflow is cumulative", func() {
				d, _ := acc.Dataset("ggH")
				byStep := map[string]int64{}
				for _, e := range d.Cutflow {
					byStep[e.Step] = e.Events
				}
				So(byStep[selection.StepMuon], ShouldEqual, 6)
				So(byStep[selection.StepFourLeptons], ShouldEqual, 2)
				So(byStep[selection.StepZZMass], ShouldEqual, 2)
				last := d.Cutflow[len(d.Cutflow)-1]
				So(last.SumMCWeight, ShouldEqual, 4)
				So(last.Efficiency, ShouldAlmostEqual, 1.0/3)
			})
		})
	})

	Convey("Given a data chunk", t, func() {
		acc := stats.New()
		c := chunk(model.Data)
		res := selection.New().Select(context.Background(), c)
		acc.Add(c, res, nil)

		Convey("Then no weights or processes are tracked", func() {
			d, _ := acc.Dataset("ggH")
			So(d.Kind, ShouldEqual, "data")
			So(d.SumMCWeight, ShouldEqual, 0)
			So(d.PerProcess, ShouldBeNil)
			So(d.NumEventsSelected, ShouldEqual, 1)
		})
	})

	Convey("Given chunks added concurrently", t, func() {
		acc := stats.New()
		c := chunk(model.Simulation)
		res := selection.New().Select(context.Background(), c)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				acc.Add(c, res, nil)
			}()
		}
		wg.Wait()

		Convey("Then nothing is lost", func() {
			d, _ := acc.Dataset("ggH")
			So(d.NumEvents, ShouldEqual, 60)
			So(acc.Datasets(), ShouldHaveLength, 1)
		})
	})
}
