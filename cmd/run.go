package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/h4l/internal/adapters/http/api"
	"github.com/okian/h4l/internal/adapters/http/swagger"
	app "github.com/okian/h4l/internal/app"
	"github.com/okian/h4l/internal/config"
	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/testevents"
	"github.com/okian/h4l/pkg/logger"
)

// generatorConfig maps the configured datasets onto the toy generator.
func generatorConfig(cfg *config.Config) (testevents.Config, error) {
	out := testevents.Config{
		Seed:        cfg.Generator.Seed,
		Concurrency: cfg.Generator.Concurrency,
	}
	for _, d := range cfg.Generator.Datasets {
		kind, err := model.ParseDatasetKind(d.Kind)
		if err != nil {
			return testevents.Config{}, fmt.Errorf("dataset %s: %w", d.Name, err)
		}
		m, err := testevents.ParseModel(d.Model)
		if err != nil {
			return testevents.Config{}, fmt.Errorf("dataset %s: %w", d.Name, err)
		}
		out.Datasets = append(out.Datasets, testevents.Dataset{
			Name:      d.Name,
			Kind:      kind,
			ProcessID: d.ProcessID,
			Model:     m,
			Events:    d.Events,
			ChunkSize: d.ChunkSize,
		})
	}
	return out, nil
}

// newMux registers the analysis API and its docs.
func newMux(svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	swagger.Register(mux)
	return mux
}

// feed submits every chunk and waits until the service has processed them.
func feed(ctx context.Context, svc *app.Service, chunks []*model.Chunk) error {
	for _, c := range chunks {
		if err := svc.Submit(ctx, c); err != nil {
			return err
		}
	}
	return svc.Drain(ctx)
}

// report logs the per-dataset totals.
func report(ctx context.Context, log logger.Logger, svc *app.Service) {
	for _, d := range svc.Stats() {
		fields := []logger.Field{
			logger.String("dataset", d.Name),
			logger.String("kind", d.Kind),
			logger.Int64("chunks", d.Chunks),
			logger.Int64("events", d.NumEvents),
			logger.Int64("selected", d.NumEventsSelected),
		}
		if d.Kind == model.Simulation.String() {
			fields = append(fields,
				logger.Float64("sum_mc_weight", d.SumMCWeight),
				logger.Float64("sum_mc_weight_selected", d.SumMCWeightSelected),
			)
		}
		log.Info(ctx, "dataset done", fields...)
	}
}
