package selection

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
)

// LumiMask is a golden luminosity mask: the certified luminosity blocks of
// each run.
type LumiMask struct {
	runs map[uint32]*roaring.Bitmap
}

// NewLumiMask builds a mask from inclusive [first, last] block ranges per run.
func NewLumiMask(ranges map[uint32][][2]uint32) (*LumiMask, error) {
	m := &LumiMask{runs: make(map[uint32]*roaring.Bitmap, len(ranges))}
	for run, rs := range ranges {
		bm := roaring.New()
		for _, r := range rs {
			if r[0] > r[1] {
				return nil, fmt.Errorf("run %d: inverted lumi range [%d, %d]", run, r[0], r[1])
			}
			bm.AddRange(uint64(r[0]), uint64(r[1])+1)
		}
		m.runs[run] = bm
	}
	return m, nil
}

// ParseLumiMask reads the certification JSON format:
//
//	{"355100": [[1, 50], [60, 100]], ...}
func ParseLumiMask(r io.Reader) (*LumiMask, error) {
	var raw map[string][][2]uint32
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode lumi mask: %w", err)
	}
	ranges := make(map[uint32][][2]uint32, len(raw))
	for k, v := range raw {
		run, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("lumi mask run %q: %w", k, err)
		}
		ranges[uint32(run)] = v
	}
	return NewLumiMask(ranges)
}

// Contains reports whether the block is certified. A nil mask accepts everything.
func (m *LumiMask) Contains(run, lumi uint32) bool {
	if m == nil {
		return true
	}
	bm, ok := m.runs[run]
	return ok && bm.Contains(lumi)
}

// Runs returns the number of runs in the mask.
func (m *LumiMask) Runs() int {
	if m == nil {
		return 0
	}
	return len(m.runs)
}

// Blocks returns the total number of certified luminosity blocks.
func (m *LumiMask) Blocks() uint64 {
	if m == nil {
		return 0
	}
	var n uint64
	for _, bm := range m.runs {
		n += bm.GetCardinality()
	}
	return n
}
