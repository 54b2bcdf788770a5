package progress

import "github.com/roach88/maturing/internal/threshold"

// Point is one value of a series at a chunk.
type Point struct {
	ChunkID int64 `json:"chunk"`
	Value   int64 `json:"value"`
}

// Series is the crossing history of a single threshold.
type Series struct {
	Threshold threshold.Threshold `json:"threshold"`

	// Good holds upward crossings per chunk.
	Good []Point `json:"good"`

	// Fail holds downward crossings per chunk as non-positive values.
	Fail []Point `json:"fail"`

	// Accum holds TotalGood-TotalFail as of the end of each chunk.
	Accum []Point `json:"accum"`

	TotalGood int64 `json:"total_good"`
	TotalFail int64 `json:"total_fail"`
}

// Final returns the net total at the last chunk, which is chunk 0 for any
// series produced by Aggregate.
func (s Series) Final() int64 {
	if len(s.Accum) == 0 {
		return 0
	}
	return s.Accum[len(s.Accum)-1].Value
}

// Progress holds both threshold series over the same chunks.
type Progress struct {
	Mature Series `json:"mature"`
	Known  Series `json:"known"`
}

// Chunks returns the number of chunks in the series.
func (p *Progress) Chunks() int {
	return len(p.Mature.Accum)
}

// Series returns the series for t.
func (p *Progress) Series(t threshold.Threshold) Series {
	if t == threshold.Known {
		return p.Known
	}
	return p.Mature
}
