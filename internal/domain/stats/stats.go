// Package stats accumulates event counts, generator weight sums and
// cutflows over processed chunks.
package stats

import (
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/okian/h4l/internal/domain/model"
	"github.com/okian/h4l/internal/domain/selection"
	"github.com/okian/h4l/internal/domain/types"
)

// Totals are the side-channel counters. Weight sums stay zero for data.
type Totals struct {
	NumEvents           int64   `json:"num_events"`
	NumEventsSelected   int64   `json:"num_events_selected"`
	SumMCWeight         float64 `json:"sum_mc_weight"`
	SumMCWeightSelected float64 `json:"sum_mc_weight_selected"`
}

func (t *Totals) add(o Totals) {
	t.NumEvents += o.NumEvents
	t.NumEventsSelected += o.NumEventsSelected
	t.SumMCWeight += o.SumMCWeight
	t.SumMCWeightSelected += o.SumMCWeightSelected
}

// Dataset is the accumulated state of one dataset.
type Dataset struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Chunks int64  `json:"chunks"`
	Totals
	// PerProcess is filled for simulation only.
	PerProcess map[int]Totals       `json:"per_process,omitempty"`
	Cutflow    []types.CutflowEntry `json:"cutflow"`
	Categories map[int]int64        `json:"categories,omitempty"`
}

// StepCount is the number of events passing one step on its own.
type StepCount struct {
	Step   string
	Passed uint64
}

// ChunkSummary is what one Add contributed.
type ChunkSummary struct {
	Dataset string
	Kind    model.DatasetKind
	Totals
	Steps      []StepCount
	Categories map[int]int
}

// Accumulator is safe for concurrent use.
type Accumulator struct {
	mu       sync.Mutex
	datasets map[string]*Dataset
}

// New creates an empty accumulator.
func New() *Accumulator {
	return &Accumulator{datasets: make(map[string]*Dataset)}
}

// Add records a selected chunk. categoryIDs may be nil; otherwise every
// selected event counts once towards each of its categories.
func (a *Accumulator) Add(chunk *model.Chunk, res *selection.Result, categoryIDs [][]int) ChunkSummary {
	ds := chunk.Dataset
	mc := ds.IsMC()

	sum := ChunkSummary{Dataset: ds.Name, Kind: ds.Kind, Categories: make(map[int]int)}
	sum.NumEvents = int64(res.N)
	sum.NumEventsSelected = int64(res.SelectedCount())
	if mc {
		sum.SumMCWeight = weightSum(chunk, nil)
		sum.SumMCWeightSelected = weightSum(chunk, res.Event)
	}

	// Cumulative cutflow, computed outside the lock.
	type cut struct {
		step   string
		events int64
		weight float64
	}
	cuts := make([]cut, 0, len(res.Steps))
	running := roaring.New()
	running.AddRange(0, uint64(res.N))
	for _, s := range res.Steps {
		sum.Steps = append(sum.Steps, StepCount{Step: s.Name, Passed: s.Mask.GetCardinality()})
		running.And(s.Mask)
		c := cut{step: s.Name, events: int64(running.GetCardinality())}
		if mc {
			c.weight = weightSum(chunk, running)
		}
		cuts = append(cuts, c)
	}

	if categoryIDs != nil {
		it := res.Event.Iterator()
		for it.HasNext() {
			for _, id := range categoryIDs[it.Next()] {
				sum.Categories[id]++
			}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	d, ok := a.datasets[ds.Name]
	if !ok {
		d = &Dataset{Name: ds.Name, Kind: ds.Kind.String(), Categories: make(map[int]int64)}
		if mc {
			d.PerProcess = make(map[int]Totals)
		}
		a.datasets[ds.Name] = d
	}
	d.Chunks++
	d.Totals.add(sum.Totals)
	if mc {
		p := d.PerProcess[ds.ProcessID]
		p.add(sum.Totals)
		d.PerProcess[ds.ProcessID] = p
	}
	for _, c := range cuts {
		e := cutflowEntry(d, c.step)
		e.Events += c.events
		e.SumMCWeight += c.weight
	}
	for i := range d.Cutflow {
		d.Cutflow[i].Efficiency = types.Efficiency(d.Cutflow[i].Events, d.NumEvents)
	}
	for id, n := range sum.Categories {
		d.Categories[id] += int64(n)
	}
	return sum
}

func indexOf(entries []types.CutflowEntry, step string) int {
	for i := range entries {
		if entries[i].Step == step {
			return i
		}
	}
	return -1
}

func cutflowEntry(d *Dataset, step string) *types.CutflowEntry {
	if i := indexOf(d.Cutflow, step); i >= 0 {
		return &d.Cutflow[i]
	}
	d.Cutflow = append(d.Cutflow, types.CutflowEntry{Step: step})
	return &d.Cutflow[len(d.Cutflow)-1]
}

// weightSum adds the generator weights of the events in mask, or of all
// events for a nil mask.
func weightSum(chunk *model.Chunk, mask *roaring.Bitmap) float64 {
	var s float64
	if mask == nil {
		for i := range chunk.Events {
			s += chunk.Events[i].GenWeight
		}
		return s
	}
	it := mask.Iterator()
	for it.HasNext() {
		s += chunk.Events[it.Next()].GenWeight
	}
	return s
}

// Dataset returns a copy of one dataset's state.
func (a *Accumulator) Dataset(name string) (Dataset, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.datasets[name]
	if !ok {
		return Dataset{}, false
	}
	return copyDataset(d), true
}

// Datasets returns copies of all datasets sorted by name.
func (a *Accumulator) Datasets() []Dataset {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Dataset, 0, len(a.datasets))
	for _, d := range a.datasets {
		out = append(out, copyDataset(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Totals returns the counters summed over all datasets.
func (a *Accumulator) Totals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	var t Totals
	for _, d := range a.datasets {
		t.add(d.Totals)
	}
	return t
}

// SumMCWeight returns the generator weight sum of a process over all
// simulated datasets.
func (a *Accumulator) SumMCWeight(processID int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var s float64
	for _, d := range a.datasets {
		s += d.PerProcess[processID].SumMCWeight
	}
	return s
}

func copyDataset(d *Dataset) Dataset {
	out := *d
	out.Cutflow = append([]types.CutflowEntry(nil), d.Cutflow...)
	if d.PerProcess != nil {
		out.PerProcess = make(map[int]Totals, len(d.PerProcess))
		for k, v := range d.PerProcess {
			out.PerProcess[k] = v
		}
	}
	out.Categories = make(map[int]int64, len(d.Categories))
	for k, v := range d.Categories {
		out.Categories[k] = v
	}
	return out
}
