// Package service runs chunks through selection, production and statistics
// and exposes the accumulated results to the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/h4l/internal/adapters/mq/queue"
	"github.com/okian/h4l/internal/adapters/mq/worker"
	"github.com/okian/h4l/internal/config"
	"github.com/okian/h4l/internal/domain/analysis"
	"github.com/okian/h4l/internal/domain/categorization"
	"github.com/okian/h4l/internal/domain/dedupe"
	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/production"
	"github.com/okian/h4l/internal/domain/selection"
	"github.com/okian/h4l/internal/domain/stats"
	"github.com/okian/h4l/internal/domain/types"
	"github.com/okian/h4l/pkg/logger"
	"github.com/okian/h4l/pkg/metrics"
)

// ErrNotStarted is returned by Submit before Start.
var ErrNotStarted = errors.New("service not started")

// Observer receives every processed chunk with its selection result and
// produced columns. It runs on worker goroutines.
type Observer func(chunk *model.Chunk, res *selection.Result, cols *production.Columns)

// Service owns the pipeline and the queue feeding it.
type Service struct {
	mu sync.RWMutex

	cfg        *config.Config
	registry   *analysis.Config
	sumWeights map[int]float64
	observer   Observer

	selector *selection.Selector
	producer *production.Producer
	assigner *categorization.Assigner
	stats    *stats.Accumulator
	deduper  dedupe.Deduper

	queue *queue.InMemoryQueue
	pool  *worker.Pool

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRegistry shares an analysis registry instead of creating one.
func WithRegistry(reg *analysis.Config) Option {
	return func(s *Service) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithSumWeights enables normalization weights using per-process generator
// weight sums taken over all events.
func WithSumWeights(sums map[int]float64) Option {
	return func(s *Service) { s.sumWeights = sums }
}

// WithObserver registers a callback for processed chunks.
func WithObserver(fn Observer) Option {
	return func(s *Service) { s.observer = fn }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the pipeline described by cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		cfg:   cfg,
		stats: stats.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.registry == nil {
		s.registry = analysis.NewConfig(cfg.AnalysisName)
	}

	if err := BuildAnalysis(cfg, s.registry); err != nil {
		return nil, err
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.Runner.DedupeSize))
	sel, err := BuildSelector(cfg, s.deduper)
	if err != nil {
		return nil, err
	}
	s.selector = sel

	s.producer, s.assigner, err = BuildProducer(cfg, s.registry, s.sumWeights)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start creates the queue and launches the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.Runner.QueueSize))
	s.pool = worker.NewPool(s.cfg.Runner.WorkerCount, s.queue, s)
	s.pool.Start(ctx)
	s.started = true

	s.logger.Info(ctx, "analysis service started",
		logger.String("analysis", s.registry.Name),
		logger.Int("workers", s.cfg.Runner.WorkerCount),
		logger.Int("queueSize", s.cfg.Runner.QueueSize),
		logger.Int("categories", len(s.registry.Categories())),
	)
	return nil
}

// Submit queues a chunk, blocking while the queue is full.
func (s *Service) Submit(ctx context.Context, c *model.Chunk) error {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		return ErrNotStarted
	}
	if err := q.EnqueueWait(ctx, c); err != nil {
		return fmt.Errorf("submit chunk %s: %w", c.ID, err)
	}
	return nil
}

// Drain stops accepting chunks and waits until the queued ones are processed.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		return err
	}
	s.started = false
	s.logger.Info(ctx, "analysis service drained",
		logger.Int64("events", s.stats.Totals().NumEvents),
		logger.Int64("selected", s.stats.Totals().NumEventsSelected),
	)
	return nil
}

// Stop drains the service with a background context.
func (s *Service) Stop() {
	if err := s.Drain(context.Background()); err != nil {
		s.logger.Warn(context.Background(), "stop", logger.Error(err))
	}
}

// Process runs the full pipeline on one chunk and records its statistics.
// A failing step fails the whole chunk; nothing is accumulated for it.
func (s *Service) Process(ctx context.Context, c *model.Chunk) error {
	start := time.Now()

	res := s.selector.Select(ctx, c)
	if err := ctx.Err(); err != nil {
		s.release(ctx, c, res)
		return fmt.Errorf("chunk %s: %w", c.ID, err)
	}
	cols, err := s.producer.Produce(c, res)
	if err != nil {
		metrics.RecordErrorByComponent("production", "produce_error")
		s.release(ctx, c, res)
		return fmt.Errorf("chunk %s: %w", c.ID, err)
	}

	sum := s.stats.Add(c, res, cols.CategoryIDs)
	s.record(c, res, sum)
	metrics.RecordChunkLatency(float64(time.Since(start).Milliseconds()))

	if s.observer != nil {
		s.observer(c, res, cols)
	}

	s.logger.Debug(ctx, "chunk processed",
		logger.String("chunk", c.ID),
		logger.String("dataset", c.Dataset.Name),
		logger.Int("events", res.N),
		logger.Int("selected", res.SelectedCount()),
	)
	return nil
}

// release forgets the unique_event keys recorded for a chunk that was not
// accumulated, so a resubmission is not rejected as duplicate.
func (s *Service) release(ctx context.Context, c *model.Chunk, res *selection.Result) {
	if s.deduper == nil {
		return
	}
	unique, ok := res.Step(selection.StepUniqueEvent)
	if !ok {
		return
	}
	it := unique.Iterator()
	for it.HasNext() {
		s.deduper.Unrecord(ctx, c.Events[it.Next()].Key())
	}
}

// record mirrors a chunk summary to Prometheus.
func (s *Service) record(c *model.Chunk, res *selection.Result, sum stats.ChunkSummary) {
	name := c.Dataset.Name
	metrics.RecordChunkProcessed(name, c.Dataset.Kind.String())
	metrics.RecordEvents(name, int(sum.NumEvents), int(sum.NumEventsSelected))
	for _, st := range sum.Steps {
		metrics.RecordStepPassed(name, st.Step, st.Passed)
		if st.Step == selection.StepUniqueEvent {
			for i := st.Passed; i < uint64(res.N); i++ {
				metrics.RecordDuplicateEvent()
			}
		}
	}
	if c.Dataset.IsMC() {
		metrics.AddMCWeightSum(name, "all", sum.SumMCWeight)
		metrics.AddMCWeightSum(name, "selected", sum.SumMCWeightSelected)
	}

	perChannel := map[string]int{}
	for _, cands := range res.Candidates {
		for _, cand := range cands {
			perChannel[string(cand.Channel)]++
		}
	}
	for ch, n := range perChannel {
		metrics.RecordCandidates(ch, n)
	}

	for id, n := range sum.Categories {
		cat := s.assigner.Name(id)
		for i := 0; i < n; i++ {
			metrics.RecordCategoryAssigned(cat)
		}
	}
}

// Stats returns the accumulated state of every dataset.
func (s *Service) Stats() []stats.Dataset {
	return s.stats.Datasets()
}

// Totals returns the counters summed over all datasets.
func (s *Service) Totals() stats.Totals {
	return s.stats.Totals()
}

// Cutflow returns the cumulative cutflow of one dataset.
func (s *Service) Cutflow(dataset string) ([]types.CutflowEntry, bool) {
	d, ok := s.stats.Dataset(dataset)
	if !ok {
		return nil, false
	}
	return d.Cutflow, true
}

// Categories lists the registered categories with their assignment counts
// over all datasets.
func (s *Service) Categories() []types.CategoryRow {
	assigned := map[int]int64{}
	for _, d := range s.stats.Datasets() {
		for id, n := range d.Categories {
			assigned[id] += n
		}
	}

	cats := s.registry.Categories()
	rows := make([]types.CategoryRow, len(cats))
	for i, c := range cats {
		rows[i] = types.CategoryRow{
			Name:      c.Name,
			ID:        c.ID,
			Label:     c.Label,
			Selection: c.Selection,
			Children:  c.Children,
			Leaf:      c.IsLeaf(),
			Assigned:  assigned[c.ID],
		}
	}
	return rows
}

// Registry returns the analysis registry.
func (s *Service) Registry() *analysis.Config {
	return s.registry
}

// Info reports runtime state for monitoring.
func (s *Service) Info() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := map[string]any{
		"started":     s.started,
		"analysis":    s.registry.Name,
		"workerCount": s.cfg.Runner.WorkerCount,
		"queueSize":   s.cfg.Runner.QueueSize,
		"dedupeSize":  s.deduper.Size(),
	}
	if s.started {
		info["queueLength"] = s.queue.Len()
		info["workersRunning"] = s.pool.Running()
	}
	return info
}
