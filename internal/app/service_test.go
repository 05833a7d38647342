package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/h4l/internal/app"
	"github.com/okian/h4l/internal/config"
	"github.com/okian/h4l/internal/domain/analysis"
	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/production"
	"github.com/okian/h4l/internal/domain/selection"
	"github.com/okian/h4l/internal/testevents"
	"github.com/okian/h4l/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Runner.WorkerCount = 2
	cfg.Runner.QueueSize = 4
	return cfg
}

func generate(ds ...testevents.Dataset) []*model.Chunk {
	chunks, err := testevents.Generate(context.Background(), testevents.Config{Seed: 11, Concurrency: 2, Datasets: ds})
	if err != nil {
		panic(err)
	}
	return chunks
}

var (
	ggH  = testevents.Dataset{Name: "ggH_ZZ_4l", Kind: model.Simulation, ProcessID: 100, Model: testevents.ModelHiggs, Events: 400, ChunkSize: 200}
	data = testevents.Dataset{Name: "DoubleMuon_2018", Kind: model.Data, ProcessID: 1, Model: testevents.ModelData, Events: 400, ChunkSize: 400}
)

type collector struct {
	mu   sync.Mutex
	cols map[string]*production.Columns
	res  map[string]*selection.Result
}

func newCollector() *collector {
	return &collector{cols: map[string]*production.Columns{}, res: map[string]*selection.Result{}}
}

func (c *collector) observe(chunk *model.Chunk, res *selection.Result, cols *production.Columns) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cols[chunk.ID] = cols
	c.res[chunk.ID] = res
}

func TestService_New(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		reg := analysis.NewConfig("test")
		svc, err := service.New(testConfig(), service.WithRegistry(reg))
		So(err, ShouldBeNil)

		Convey("Then categories and variables are registered", func() {
			So(len(svc.Categories()), ShouldEqual, 4)
			So(reg.HasCategory("2e2mu"), ShouldBeTrue)
			_, ok := reg.Variable("m4l")
			So(ok, ShouldBeTrue)
		})

		Convey("Then building a second service on the same registry changes nothing", func() {
			_, err := service.New(testConfig(), service.WithRegistry(reg))
			So(err, ShouldBeNil)
			So(len(reg.Categories()), ShouldEqual, 4)
		})
	})

	Convey("Given combined categories", t, func() {
		cfg := testConfig()
		cfg.CombineCategories = true
		svc, err := service.New(cfg)
		So(err, ShouldBeNil)

		Convey("Then the inclusive x channel combinations are added", func() {
			So(len(svc.Categories()), ShouldBeGreaterThan, 4)
		})
	})

	Convey("Given an unknown best-candidate strategy", t, func() {
		cfg := testConfig()
		cfg.BestCandidate = "random"

		Convey("Then construction fails", func() {
			_, err := service.New(cfg)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a muon scale factor domain reaching below its table", t, func() {
		cfg := testConfig()
		cfg.ScaleFactors.Muon.MinPt = 5

		Convey("Then construction fails before any chunk can hit the gap", func() {
			_, err := service.New(cfg)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a missing lumi mask file", t, func() {
		cfg := testConfig()
		cfg.LumiMask = "/nonexistent/golden.json"

		Convey("Then construction fails", func() {
			_, err := service.New(cfg)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService_Process(t *testing.T) {
	Convey("Given a service and simulated chunks", t, func() {
		ctx := context.Background()
		col := newCollector()
		svc, err := service.New(testConfig(), service.WithObserver(col.observe))
		So(err, ShouldBeNil)
		chunks := generate(ggH)

		for _, c := range chunks {
			So(svc.Process(ctx, c), ShouldBeNil)
		}

		Convey("Then totals count every event", func() {
			totals := svc.Totals()
			So(totals.NumEvents, ShouldEqual, 400)
			So(totals.NumEventsSelected, ShouldBeGreaterThan, 0)
			So(totals.NumEventsSelected, ShouldBeLessThanOrEqualTo, totals.NumEvents)
			So(totals.SumMCWeight, ShouldEqual, 400)
		})

		Convey("Then the cutflow is ordered and non-increasing", func() {
			flow, ok := svc.Cutflow("ggH_ZZ_4l")
			So(ok, ShouldBeTrue)
			So(flow[0].Step, ShouldEqual, selection.StepTrigger)
			So(flow[len(flow)-1].Step, ShouldEqual, selection.StepZZMass)
			for i := 1; i < len(flow); i++ {
				So(flow[i].Events, ShouldBeLessThanOrEqualTo, flow[i-1].Events)
			}
			So(flow[len(flow)-1].Events, ShouldEqual, svc.Totals().NumEventsSelected)

			_, ok = svc.Cutflow("unknown")
			So(ok, ShouldBeFalse)
		})

		Convey("Then selected events have defined masses", func() {
			for _, c := range chunks {
				cols, res := col.cols[c.ID], col.res[c.ID]
				So(cols, ShouldNotBeNil)
				So(len(cols.CategoryIDs), ShouldEqual, c.Len())
				for i := range c.Events {
					if !res.Passed(i) {
						continue
					}
					So(cols.M4l[i], ShouldBeGreaterThan, 0)
					So(cols.Z1Mass[i], ShouldBeGreaterThan, 0)
					So(cols.Z2Mass[i], ShouldBeGreaterThan, 0)
					So(cols.ProcessID[i], ShouldEqual, 100)
				}
			}
		})

		Convey("Then the flavor categories split the inclusive one", func() {
			var incl, leaves int64
			for _, row := range svc.Categories() {
				if row.Name == "cat_incl" {
					incl = row.Assigned
				} else {
					leaves += row.Assigned
				}
			}
			So(incl, ShouldBeGreaterThan, 0)
			So(incl, ShouldBeLessThanOrEqualTo, svc.Totals().NumEventsSelected)
			So(leaves, ShouldEqual, incl)
		})

		Convey("Then no normalization weights are produced without weight sums", func() {
			So(col.cols[chunks[0].ID].NormalizationWeight, ShouldBeNil)
			So(col.cols[chunks[0].ID].Corrections, ShouldNotBeNil)
		})
	})

	Convey("Given generator weight sums over all events", t, func() {
		ctx := context.Background()
		col := newCollector()
		chunks := generate(ggH)
		cfg := testConfig()
		svc, err := service.New(cfg,
			service.WithObserver(col.observe),
			service.WithSumWeights(production.SumGenWeights(chunks...)),
		)
		So(err, ShouldBeNil)

		for _, c := range chunks {
			So(svc.Process(ctx, c), ShouldBeNil)
		}

		Convey("Then normalization weights sum to luminosity times cross section", func() {
			var sum float64
			for _, c := range chunks {
				for _, w := range col.cols[c.ID].NormalizationWeight {
					sum += w
				}
			}
			want := cfg.Luminosity * cfg.CrossSections["ggH_ZZ_4l"]
			So(math.Abs(sum-want), ShouldBeLessThan, 1e-6*want)
		})
	})

	Convey("Given weight sums missing the processed process", t, func() {
		svc, err := service.New(testConfig(), service.WithSumWeights(map[int]float64{200: 10}))
		So(err, ShouldBeNil)

		Convey("Then the chunk fails with a normalization error", func() {
			err := svc.Process(context.Background(), generate(ggH)[0])
			So(errors.Is(err, production.ErrMissingNormalization), ShouldBeTrue)
			So(svc.Totals().NumEvents, ShouldEqual, 0)
		})
	})

	Convey("Given data with unique_event switched on", t, func() {
		cfg := testConfig()
		cfg.Steps["unique_event"] = true
		svc, err := service.New(cfg)
		So(err, ShouldBeNil)
		chunk := generate(data)[0]

		keys := map[string]bool{}
		dups := 0
		for _, ev := range chunk.Events {
			if keys[ev.Key()] {
				dups++
			}
			keys[ev.Key()] = true
		}
		So(svc.Process(context.Background(), chunk), ShouldBeNil)

		Convey("Then duplicates fail the unique_event step and no weights are summed", func() {
			flow, ok := svc.Cutflow("DoubleMuon_2018")
			So(ok, ShouldBeTrue)
			So(flow[0].Step, ShouldEqual, selection.StepJSON)
			So(flow[0].Events, ShouldEqual, int64(len(chunk.Events)))
			So(flow[1].Step, ShouldEqual, selection.StepUniqueEvent)
			So(flow[1].Events, ShouldEqual, int64(len(chunk.Events)-dups))
			So(svc.Totals().SumMCWeight, ShouldEqual, 0)
		})
	})

	Convey("Given a data chunk whose processing is cancelled", t, func() {
		cfg := testConfig()
		cfg.Steps["unique_event"] = true
		svc, err := service.New(cfg)
		So(err, ShouldBeNil)
		chunk := generate(data)[0]
		keys := map[string]bool{}
		for _, ev := range chunk.Events {
			keys[ev.Key()] = true
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = svc.Process(ctx, chunk)

		Convey("Then nothing is accumulated and its keys are released for a retry", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			_, ok := svc.Cutflow("DoubleMuon_2018")
			So(ok, ShouldBeFalse)

			So(svc.Process(context.Background(), chunk), ShouldBeNil)
			flow, ok := svc.Cutflow("DoubleMuon_2018")
			So(ok, ShouldBeTrue)
			So(flow[1].Events, ShouldEqual, int64(len(keys)))
		})
	})
}

func TestService_Runner(t *testing.T) {
	Convey("Given a service that is not started", t, func() {
		svc, err := service.New(testConfig())
		So(err, ShouldBeNil)

		Convey("Then submitting fails", func() {
			err := svc.Submit(context.Background(), generate(ggH)[0])
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Drain(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc, err := service.New(testConfig())
		So(err, ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Info()["started"], ShouldEqual, true)

		Convey("When chunks are submitted and the service drained", func() {
			chunks := generate(ggH, data)
			for _, c := range chunks {
				So(svc.Submit(ctx, c), ShouldBeNil)
			}
			So(svc.Drain(ctx), ShouldBeNil)

			Convey("Then every chunk is accounted for", func() {
				So(svc.Totals().NumEvents, ShouldEqual, 800)
				So(len(svc.Stats()), ShouldEqual, 2)
				So(svc.Info()["started"], ShouldEqual, false)
			})

			Convey("Then further submissions are rejected", func() {
				So(svc.Submit(ctx, chunks[0]), ShouldNotBeNil)
			})
		})
	})
}
