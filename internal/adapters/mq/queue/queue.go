// Package queue holds chunks waiting for a pipeline worker.
package queue

import (
	"context"
	"sync"

	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue is a bounded FIFO of chunks.
type Queue interface {
	// Enqueue adds a chunk without blocking. It fails with ErrQueueFull or
	// ErrQueueClosed.
	Enqueue(ctx context.Context, c *model.Chunk) error
	// EnqueueWait blocks until the chunk is queued, the queue is closed or
	// ctx is done.
	EnqueueWait(ctx context.Context, c *model.Chunk) error
	// Dequeue blocks for the next chunk. ok is false once the queue is
	// closed and drained, or ctx is done.
	Dequeue(ctx context.Context) (c *model.Chunk, ok bool)
	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel. Closing does not
// drop queued chunks; consumers drain them first.
//
// Producers hold mu for reading while they send. Close signals closing, then
// takes mu for writing before it closes done, so every accepted chunk is
// buffered before consumers can observe done.
type InMemoryQueue struct {
	mu       sync.RWMutex
	chunks   chan *model.Chunk
	capacity int

	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.chunks = make(chan *model.Chunk, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.updateGauges()
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, c *model.Chunk) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.IsClosed() {
		return q.reject("closed", ErrQueueClosed)
	}
	select {
	case q.chunks <- c:
		q.accepted()
		return nil
	case <-ctx.Done():
		return q.reject("context_cancelled", ctx.Err())
	default:
		return q.reject("queue_full", ErrQueueFull)
	}
}

func (q *InMemoryQueue) EnqueueWait(ctx context.Context, c *model.Chunk) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.IsClosed() {
		return q.reject("closed", ErrQueueClosed)
	}
	select {
	case q.chunks <- c:
		q.accepted()
		return nil
	case <-q.closing:
		return q.reject("closed", ErrQueueClosed)
	case <-ctx.Done():
		return q.reject("context_cancelled", ctx.Err())
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) (*model.Chunk, bool) {
	select {
	case c := <-q.chunks:
		q.taken()
		return c, true
	case <-q.done:
		// Drain what is left after Close.
		select {
		case c := <-q.chunks:
			q.taken()
			return c, true
		default:
			return nil, false
		}
	case <-ctx.Done():
		return nil, false
	}
}

// Len returns the number of queued chunks.
func (q *InMemoryQueue) Len() int {
	return len(q.chunks)
}

// Close stops accepting chunks. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.closing)
		q.mu.Lock()
		close(q.done)
		q.mu.Unlock()
	})
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	select {
	case <-q.closing:
		return true
	default:
		return false
	}
}

func (q *InMemoryQueue) accepted() {
	metrics.RecordQueueEnqueue()
	q.updateGauges()
}

func (q *InMemoryQueue) taken() {
	metrics.RecordQueueDequeue()
	q.updateGauges()
}

func (q *InMemoryQueue) reject(reason string, err error) error {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
	return err
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.chunks)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
