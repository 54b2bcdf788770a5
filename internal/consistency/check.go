// Package consistency cross-checks the maturing progress series against the
// item snapshot table.
//
// The net total of a series at chunk 0 should equal the number of items
// whose current interval is at or above the series' threshold. A mismatch
// means the review log has drifted from the snapshots and the repair
// command should be run. The check is advisory: a mismatch is reported,
// never returned as an error.
package consistency

import (
	"context"
	"log/slog"

	"github.com/roach88/maturing/internal/progress"
	"github.com/roach88/maturing/internal/revlog"
	"github.com/roach88/maturing/internal/threshold"
)

// RepairAction names the command that fixes an inconsistent log.
const RepairAction = "maturing repair"

// ItemCounter counts reviewed items by snapshot interval.
type ItemCounter interface {
	CountItemsAtOrAbove(ctx context.Context, t threshold.Threshold, scope revlog.Filter) (int64, error)
}

// Comparison is the outcome of checking one threshold.
type Comparison struct {
	Threshold threshold.Threshold `json:"threshold"`
	Snapshot  int64               `json:"snapshot"`
	Log       int64               `json:"log"`
}

// Consistent reports whether the snapshot count matches the log total.
func (c Comparison) Consistent() bool {
	return c.Snapshot == c.Log
}

// Report is the result of a consistency check.
type Report struct {
	Mature     Comparison `json:"mature"`
	Known      Comparison `json:"known"`
	Consistent bool       `json:"consistent"`

	// RepairAction is set when the check failed.
	RepairAction string `json:"repair_action,omitempty"`
}

// Check compares the final totals of p with the snapshot counts for both
// thresholds, using the same scope the series was built with.
// Errors are only returned when the counter fails.
func Check(ctx context.Context, counter ItemCounter, p *progress.Progress, scope revlog.Filter, logger *slog.Logger) (Report, error) {
	var r Report

	for _, t := range threshold.All {
		n, err := counter.CountItemsAtOrAbove(ctx, t, scope)
		if err != nil {
			return Report{}, err
		}
		c := Comparison{Threshold: t, Snapshot: n, Log: p.Series(t).Final()}
		if t == threshold.Known {
			r.Known = c
		} else {
			r.Mature = c
		}
	}

	r.Consistent = r.Mature.Consistent() && r.Known.Consistent()
	if !r.Consistent {
		r.RepairAction = RepairAction
		logger.Warn("review log inconsistent with item snapshots",
			"mature_snapshot", r.Mature.Snapshot,
			"mature_log", r.Mature.Log,
			"known_snapshot", r.Known.Snapshot,
			"known_log", r.Known.Log,
			"action", RepairAction,
		)
		return r, nil
	}

	logger.Debug("review log consistency check passed",
		"mature", r.Mature.Snapshot,
		"known", r.Known.Snapshot,
	)
	return r, nil
}
