package progress

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/maturing/internal/revlog"
	"github.com/roach88/maturing/internal/threshold"
)

// ChunkSource supplies grouped crossing counts for a query.
type ChunkSource interface {
	ChunkCrossings(ctx context.Context, q revlog.ChunkQuery) ([]revlog.ChunkCounts, error)
}

// Load queries src and aggregates the result.
// Returns ErrEmptyDataset if the query matches no events.
func Load(ctx context.Context, src ChunkSource, q revlog.ChunkQuery, logger *slog.Logger) (*Progress, error) {
	rows, err := src.ChunkCrossings(ctx, q)
	if err != nil {
		return nil, err
	}

	p, err := Aggregate(rows)
	if err != nil {
		return nil, err
	}

	logger.Debug("progress aggregated",
		"chunks", p.Chunks(),
		"chunk_days", q.ChunkDays,
		"window", q.Window,
		"mature_good", p.Mature.TotalGood,
		"mature_fail", p.Mature.TotalFail,
		"known_good", p.Known.TotalGood,
		"known_fail", p.Known.TotalFail,
	)
	return p, nil
}

// Aggregate builds the mature and known series from grouped rows.
//
// Rows are ordered by chunk; if the latest chunk is before 0 an empty
// chunk 0 is appended. The latest chunk must then be exactly 0, otherwise
// a *MalformedInputError is returned and no series is produced.
func Aggregate(rows []revlog.ChunkCounts) (*Progress, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, byChunkID)

	if last := sorted[len(sorted)-1].ChunkID; last < 0 {
		sorted = append(sorted, revlog.ChunkCounts{ChunkID: 0})
	}
	if last := sorted[len(sorted)-1].ChunkID; last != 0 {
		return nil, &MalformedInputError{LastChunkID: last}
	}

	return &Progress{
		Mature: scan(threshold.Mature, sorted, func(c revlog.ChunkCounts) (int64, int64) {
			return c.MatureGood, c.MatureFail
		}),
		Known: scan(threshold.Known, sorted, func(c revlog.ChunkCounts) (int64, int64) {
			return c.KnownGood, c.KnownFail
		}),
	}, nil
}

// scan is a prefix sum over the chunks for one threshold.
func scan(t threshold.Threshold, rows []revlog.ChunkCounts, pick func(revlog.ChunkCounts) (good, fail int64)) Series {
	s := Series{
		Threshold: t,
		Good:      make([]Point, 0, len(rows)),
		Fail:      make([]Point, 0, len(rows)),
		Accum:     make([]Point, 0, len(rows)),
	}

	for _, r := range rows {
		good, fail := pick(r)
		s.TotalGood += good
		s.TotalFail += fail

		s.Good = append(s.Good, Point{ChunkID: r.ChunkID, Value: good})
		s.Fail = append(s.Fail, Point{ChunkID: r.ChunkID, Value: -fail})
		s.Accum = append(s.Accum, Point{ChunkID: r.ChunkID, Value: s.TotalGood - s.TotalFail})
	}
	return s
}
