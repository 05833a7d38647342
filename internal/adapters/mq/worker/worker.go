// Package worker runs the analysis pipeline over queued chunks.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/pkg/logger"
	"github.com/okian/h4l/pkg/metrics"
)

const (
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Processor runs the full pipeline on one chunk.
type Processor interface {
	Process(ctx context.Context, c *model.Chunk) error
}

// Queue defines how workers receive chunks.
type Queue interface {
	Dequeue(ctx context.Context) (*model.Chunk, bool)
}

// Worker pulls chunks until the queue drains or ctx is canceled.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, processor Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		processor: processor,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run processes chunks until the queue is closed and drained, Shutdown is
// called or ctx is canceled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// Dequeue is released by either ctx or an explicit shutdown.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.shutdown:
			cancel()
		case <-runCtx.Done():
		}
	}()

	for {
		c, ok := w.queue.Dequeue(runCtx)
		if !ok {
			return
		}
		if err := w.processor.Process(ctx, c); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "process_error")
			w.logger.Error(ctx, "chunk failed",
				logger.String("chunk", c.ID),
				logger.String("dataset", c.Dataset.Name),
				logger.Error(err),
			)
		}
	}
}

// Shutdown stops the worker after the chunk in flight.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	onIdle  func()

	running  atomic.Int64
	started  atomic.Bool
	idle     chan struct{}
	shutdown chan struct{}
	once     sync.Once

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers; values below one use NumCPU.
func NewPool(workerCount int, queue Queue, processor Processor, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		idle:     make(chan struct{}),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(queue, processor, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Start launches every worker and the gauge refresher.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	p.running.Store(int64(len(p.workers)))
	metrics.UpdateWorkerActiveCount(len(p.workers))

	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *InMemoryWorker) {
			defer wg.Done()
			w.Run(ctx)
			metrics.UpdateWorkerActiveCount(int(p.running.Add(-1)))
		}(w)
	}

	go func() {
		wg.Wait()
		close(p.idle)
		if p.onIdle != nil && ctx.Err() == nil {
			p.onIdle()
		}
	}()

	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			metrics.UpdateWorkerActiveCount(int(p.running.Load()))
		}
	}
}

// Running returns the number of workers that have not exited.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// Wait blocks until every started worker exits or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	if !p.started.Load() {
		return nil
	}
	select {
	case <-p.idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown closes the queue, lets workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	p.once.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	if err := p.Wait(shutdownCtx); err != nil {
		p.logger.Warn(ctx, "worker pool shutdown timed out", logger.Int("running", p.Running()))
		for _, w := range p.workers {
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
		return fmt.Errorf("worker pool shutdown: %w", err)
	}
	return nil
}
