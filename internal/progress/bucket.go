package progress

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/maturing/internal/revlog"
	"github.com/roach88/maturing/internal/threshold"
)

// Bucket classifies raw review events against both thresholds and groups
// them into chunks the same way the store's grouped query does, including
// the window bound. Scope filtering is the caller's job.
// Rows come back ordered by chunk; chunks without events are omitted.
// An invalid query is rejected before any event is bucketed.
func Bucket(events []revlog.ReviewEvent, q revlog.ChunkQuery) ([]revlog.ChunkCounts, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("bucket: %w", err)
	}

	byChunk := make(map[int64]*revlog.ChunkCounts)
	start := q.WindowStart()

	for _, e := range events {
		if start != 0 && e.ID <= start {
			continue
		}

		id := q.ChunkID(e.ID)
		c, ok := byChunk[id]
		if !ok {
			c = &revlog.ChunkCounts{ChunkID: id}
			byChunk[id] = c
		}

		switch threshold.Classify(e.PriorInterval, e.ResultInterval, threshold.Mature) {
		case threshold.Up:
			c.MatureGood++
		case threshold.Down:
			c.MatureFail++
		}
		switch threshold.Classify(e.PriorInterval, e.ResultInterval, threshold.Known) {
		case threshold.Up:
			c.KnownGood++
		case threshold.Down:
			c.KnownFail++
		}
	}

	rows := make([]revlog.ChunkCounts, 0, len(byChunk))
	for _, c := range byChunk {
		rows = append(rows, *c)
	}
	slices.SortFunc(rows, byChunkID)
	return rows, nil
}

func byChunkID(a, b revlog.ChunkCounts) int {
	return cmp.Compare(a.ChunkID, b.ChunkID)
}
