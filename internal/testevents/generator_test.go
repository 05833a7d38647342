package testevents

import (
	"context"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/h4l/internal/domain/fourvec"
	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/pkg/logger"
)

func testConfig() Config {
	return Config{
		Seed:        7,
		Concurrency: 3,
		Datasets: []Dataset{
			{Name: "ggH", Kind: model.Simulation, ProcessID: 100, Model: ModelHiggs, Events: 250, ChunkSize: 100},
			{Name: "qqZZ", Kind: model.Simulation, ProcessID: 200, Model: ModelZZ, Events: 100, ChunkSize: 100},
			{Name: "data", Kind: model.Data, ProcessID: 1, Model: ModelData, Events: 300, ChunkSize: 150},
		},
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator configuration", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx := context.Background()
		cfg := testConfig()

		chunks, err := Generate(ctx, cfg)
		So(err, ShouldBeNil)

		Convey("Then datasets are split into ordered chunks", func() {
			So(len(chunks), ShouldEqual, 3+1+2)
			So(chunks[0].Dataset.Name, ShouldEqual, "ggH")
			So(chunks[2].Len(), ShouldEqual, 50)
			So(chunks[3].Dataset.ProcessID, ShouldEqual, 200)
			So(chunks[5].Dataset.Kind, ShouldEqual, model.Data)
		})

		Convey("Then the same seed reproduces the same chunks", func() {
			again, err := Generate(ctx, cfg)
			So(err, ShouldBeNil)
			for i := range chunks {
				So(again[i].ID, ShouldEqual, chunks[i].ID)
				So(again[i].Events[0].Muons, ShouldResemble, chunks[i].Events[0].Muons)
			}
		})

		Convey("Then chunk ids are unique", func() {
			ids := map[string]bool{}
			for _, c := range chunks {
				ids[c.ID] = true
			}
			So(len(ids), ShouldEqual, len(chunks))
		})

		Convey("Then simulation carries weights and data does not", func() {
			for _, c := range chunks {
				for _, ev := range c.Events {
					if c.Dataset.IsMC() {
						So(math.Abs(ev.GenWeight), ShouldEqual, 1)
					} else {
						So(ev.GenWeight, ShouldEqual, 0)
						So(ev.Run, ShouldBeGreaterThanOrEqualTo, dataFirstRun)
					}
				}
			}
		})

		Convey("Then higgs events have at least four charge-balanced leptons near 125 GeV", func() {
			near := 0
			for _, ev := range chunks[0].Events {
				leptons := append(append([]model.Lepton(nil), ev.Electrons...), ev.Muons...)
				So(len(leptons), ShouldBeGreaterThanOrEqualTo, 4)
				So(len(ev.Electrons)%2+len(ev.Muons)%2, ShouldBeLessThanOrEqualTo, 1)

				var ps []fourvec.P4
				for _, l := range leptons[:4] {
					ps = append(ps, l.P4())
				}
				if len(leptons) == 4 && math.Abs(fourvec.Sum(ps...).Mass()-higgsMass) < 10 {
					near++
				}
			}
			So(near, ShouldBeGreaterThan, 0)
		})

		Convey("Then leptons are ordered by decreasing pt", func() {
			for _, ev := range chunks[3].Events {
				for i := 1; i < len(ev.Muons); i++ {
					So(ev.Muons[i-1].Pt, ShouldBeGreaterThanOrEqualTo, ev.Muons[i].Pt)
				}
			}
		})
	})

	Convey("Given a cancelled context", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then generation fails", func() {
			_, err := Generate(ctx, testConfig())
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a dataset without a chunk size", t, func() {
		cfg := Config{Datasets: []Dataset{{Name: "bad", Events: 10}}}

		Convey("Then generation fails", func() {
			_, err := Generate(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseModel(t *testing.T) {
	Convey("Given model names", t, func() {
		for _, name := range []string{"higgs", "zz", "data"} {
			m, err := ParseModel(name)
			So(err, ShouldBeNil)
			So(string(m), ShouldEqual, name)
		}
		_, err := ParseModel("ttbar")
		So(err, ShouldNotBeNil)
	})
}

func TestTriggers(t *testing.T) {
	Convey("Given an event with two hard muons", t, func() {
		ev := model.Event{
			Triggers: map[string]bool{},
			Muons:    []model.Lepton{{Pt: 30, Flavor: model.Muon}, {Pt: 9, Flavor: model.Muon}},
		}
		emulateTriggers(&ev)

		Convey("Then the muon paths fire and the electron paths do not", func() {
			So(ev.Triggers[pathSingleMu], ShouldBeTrue)
			So(ev.Triggers[pathDoubleMu], ShouldBeTrue)
			So(ev.Triggers[pathSingleEle], ShouldBeFalse)
			So(ev.Triggers[pathMuEle], ShouldBeFalse)
		})
	})
}
