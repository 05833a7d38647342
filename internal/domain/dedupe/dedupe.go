// Package dedupe tracks event keys already seen in recorded data.
//
// Primary datasets overlap: the same collision can be written to several
// trigger streams. The deduper remembers (run, lumi, event) keys so the
// unique_event selection step can keep the first copy only.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 1 << 20

// Deduper records seen event keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. The check and the insert happen under one lock.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key, e.g. when the chunk holding it failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps keys in a map. In bounded mode the keys also sit in a
// ring whose oldest slot is recycled once the ring wraps.
type inMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int

	seen map[string]int // key -> ring slot, -1 when unbounded
	ring []string
	live []bool
	next int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
		d.live = make([]bool, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[key] = -1
		return false
	}

	slot := d.next
	if d.live[slot] {
		delete(d.seen, d.ring[slot])
	}
	d.ring[slot] = key
	d.live[slot] = true
	d.seen[key] = slot
	d.next = (slot + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if slot >= 0 {
		d.live[slot] = false
		d.ring[slot] = ""
	}
}

// Size returns the number of keys currently remembered.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
